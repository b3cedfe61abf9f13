package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munidigital/tramite-backend/internal/intake/classifier"
	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/normalizer"
	"github.com/munidigital/tramite-backend/internal/intake/registrar"
	"github.com/munidigital/tramite-backend/internal/intake/repository"
	"github.com/munidigital/tramite-backend/internal/intake/service"
	apperrors "github.com/munidigital/tramite-backend/pkg/errors"
	"github.com/munidigital/tramite-backend/pkg/logger"
	"github.com/munidigital/tramite-backend/pkg/rowstore"
)

type stubProfiles struct {
	profiles map[string]*domain.RequesterProfile
}

func (s *stubProfiles) Resolve(_ context.Context, key string) *domain.RequesterProfile {
	if p, ok := s.profiles[key]; ok {
		return p
	}
	return domain.GuestProfile(key)
}

type captureMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMessenger) SendMessage(_ context.Context, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

func (m *captureMessenger) SendTyping(context.Context, string) {}

func (m *captureMessenger) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type captureEvents struct {
	mu         sync.Mutex
	registered int
	referred   int
	statusSet  int
	lastRecord *domain.CaseRecord
}

func (e *captureEvents) CaseRegistered(_ context.Context, rec *domain.CaseRecord, _ *domain.ClassificationDecision, _ bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registered++
	e.lastRecord = rec
}

func (e *captureEvents) CaseReferred(_ context.Context, rec *domain.CaseRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.referred++
	e.lastRecord = rec
}

func (e *captureEvents) CaseStatusChanged(_ context.Context, rec *domain.CaseRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statusSet++
	e.lastRecord = rec
}

type pipelineFixture struct {
	pipeline  *service.Pipeline
	store     *rowstore.MemoryStore
	messenger *captureMessenger
	events    *captureEvents
}

func newPipeline(t *testing.T) *pipelineFixture {
	t.Helper()

	store := rowstore.NewMemoryStore()
	repo := repository.NewCaseRepository(store, "Expedientes", logger.Nop())
	reg := registrar.New(repo, logger.Nop())

	norm := normalizer.New(normalizer.Config{
		MaxFileSize:       20 << 20,
		AllowedExtensions: []string{"pdf", "jpg", "jpeg", "png", "doc", "docx", "xls", "xlsx", "txt"},
		AllowedMimeTypes:  []string{"application/pdf", "image/jpeg", "image/png"},
	})

	chain := classifier.NewChain(logger.Nop(),
		classifier.NewRuleBased(domain.AreaMesaDePartes),
		classifier.NewMinimal(domain.AreaMesaDePartes),
	)

	profiles := &stubProfiles{profiles: map[string]*domain.RequesterProfile{
		"emp-1": {
			Key:    "emp-1",
			Name:   "Juan Pérez",
			Area:   domain.AreaObras,
			Role:   "Analista",
			Access: domain.AccessUser,
		},
	}}

	messenger := &captureMessenger{}
	events := &captureEvents{}

	return &pipelineFixture{
		pipeline:  service.NewPipeline(profiles, norm, chain, reg, events, messenger, 0, logger.Nop()),
		store:     store,
		messenger: messenger,
		events:    events,
	}
}

func TestSubmit_InternalReportRegisteredAndRouted(t *testing.T) {
	f := newPipeline(t)

	res, err := f.pipeline.Submit(context.Background(), service.Submission{
		RequesterKey: "emp-1",
		Attachment: domain.Attachment{
			FileID:   "f1",
			FileName: "informe_mensual.pdf",
			MimeType: "application/pdf",
			Size:     1 << 20,
		},
		Kind: domain.KindDocument,
	})

	require.NoError(t, err)
	require.NotNil(t, res)
	rec := res.Record
	assert.Regexp(t, domain.CaseIDPattern, rec.CaseID)
	assert.Equal(t, domain.CaseInternal, rec.Category)
	assert.Equal(t, "C-1", rec.Code)
	assert.Equal(t, "Informe", rec.DocumentType)
	assert.Equal(t, domain.AreaSecretariaGeneral, rec.ReferredArea)
	assert.Equal(t, 1.0, res.Decision.Confidence)
	assert.False(t, res.Decision.ManualReview)
	assert.False(t, res.Degraded)

	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0], rec.CaseID)
	assert.Contains(t, strings.Join(res.Notices, "\n"), domain.AreaSecretariaGeneral)
	assert.Equal(t, 1, f.events.registered)
}

func TestSubmit_CitizenPhotoNeedsReview(t *testing.T) {
	f := newPipeline(t)

	res, err := f.pipeline.Submit(context.Background(), service.Submission{
		RequesterKey: "whatsapp:+51987654321",
		Attachment: domain.Attachment{
			FileID:   "f2",
			MimeType: "image/jpeg",
			Size:     800 << 10,
		},
		Kind: domain.KindPhoto,
	})

	require.NoError(t, err)
	rec := res.Record
	assert.Equal(t, domain.CaseExternal, rec.Category)
	assert.Equal(t, "E-1", rec.Code)
	assert.Equal(t, "Documento fotografiado", rec.DocumentType)
	assert.True(t, res.Decision.ManualReview)
	all := strings.Join(res.Notices, "\n")
	assert.Contains(t, all, "Mesa de Partes")
	assert.Contains(t, all, "La imagen se registró tal como fue recibida",
		"photographed documents get the legibility caveat")
}

func TestSubmit_UrgentFilenameGetsUrgentNotice(t *testing.T) {
	f := newPipeline(t)

	res, err := f.pipeline.Submit(context.Background(), service.Submission{
		RequesterKey: "emp-1",
		Attachment: domain.Attachment{
			FileID:   "f6",
			FileName: "solicitud_urgente_reparacion.pdf",
			MimeType: "application/pdf",
			Size:     1 << 20,
		},
		Kind: domain.KindDocument,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PriorityUrgent, res.Decision.Priority)
	all := strings.Join(res.Notices, "\n")
	assert.Contains(t, all, "Muy Urgente")
	assert.Contains(t, all, "24 horas")
	assert.NotContains(t, all, "La imagen se registró tal como fue recibida")
}

func TestSubmit_NoteReachesTheRecord(t *testing.T) {
	f := newPipeline(t)

	res, err := f.pipeline.Submit(context.Background(), service.Submission{
		RequesterKey: "emp-1",
		Attachment: domain.Attachment{
			FileID:   "f7",
			FileName: "informe_mensual.pdf",
			MimeType: "application/pdf",
			Size:     1 << 20,
		},
		Kind: domain.KindDocument,
		Note: "Corresponde al expediente anterior de la cuadra 5",
	})

	require.NoError(t, err)
	assert.Contains(t, res.Record.Note, "Corresponde al expediente anterior de la cuadra 5")
}

func TestSubmit_OversizedFileRejected(t *testing.T) {
	f := newPipeline(t)

	res, err := f.pipeline.Submit(context.Background(), service.Submission{
		RequesterKey: "emp-1",
		Attachment: domain.Attachment{
			FileID:   "f3",
			FileName: "video_ceremonia.pdf",
			MimeType: "application/pdf",
			Size:     25 << 20,
		},
		Kind: domain.KindDocument,
	})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupported)
	assert.Zero(t, f.events.registered)

	require.Eventually(t, func() bool {
		msgs := f.messenger.messages()
		return len(msgs) == 1 && strings.Contains(msgs[0], "tamaño máximo")
	}, time.Second, 10*time.Millisecond, "the requester is told why the file was rejected")
}

func TestSubmit_DegradedWhenStoreUnreachable(t *testing.T) {
	f := newPipeline(t)
	f.store.FailAppend = errors.New("sheet locked")

	res, err := f.pipeline.Submit(context.Background(), service.Submission{
		RequesterKey: "emp-1",
		Attachment: domain.Attachment{
			FileID:   "f4",
			FileName: "solicitud_materiales.pdf",
			MimeType: "application/pdf",
			Size:     1 << 20,
		},
		Kind: domain.KindDocument,
	})

	require.NoError(t, err, "a store outage must not fail the submission")
	assert.True(t, res.Degraded)
	assert.Equal(t, domain.StatusReceivedTemp, res.Record.Status)
	assert.Regexp(t, domain.CaseIDPattern, res.Record.CaseID)
	assert.Contains(t, res.Notices[0], "temporal")
	assert.Equal(t, 1, f.events.registered, "degraded registrations are still announced")
}

type panickyClassifier struct{}

func (panickyClassifier) Classify(context.Context, classifier.Input) *domain.ClassificationDecision {
	panic("boom")
}

func TestSubmit_PanicContained(t *testing.T) {
	f := newPipeline(t)
	store := rowstore.NewMemoryStore()
	repo := repository.NewCaseRepository(store, "Expedientes", logger.Nop())
	p := service.NewPipeline(
		&stubProfiles{}, normalizer.New(normalizer.Config{
			MaxFileSize:       20 << 20,
			AllowedExtensions: []string{"pdf"},
		}),
		panickyClassifier{}, registrar.New(repo, logger.Nop()),
		f.events, f.messenger, 0, logger.Nop(),
	)

	res, err := p.Submit(context.Background(), service.Submission{
		RequesterKey: "emp-1",
		Attachment:   domain.Attachment{FileID: "f5", FileName: "oficio.pdf", Size: 100},
		Kind:         domain.KindDocument,
	})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}
