// Package handler exposes the intake pipeline and case directory over HTTP.
package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/service"
	apperrors "github.com/munidigital/tramite-backend/pkg/errors"
	"github.com/munidigital/tramite-backend/pkg/httputil"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// SubmissionHandler handles document submissions from channel gateways
type SubmissionHandler struct {
	pipeline  *service.Pipeline
	maxUpload int64
	log       *logger.Logger
}

// NewSubmissionHandler creates the submission handler. maxUpload bounds the
// multipart body; the pipeline applies its own per-file ceiling.
func NewSubmissionHandler(pipeline *service.Pipeline, maxUpload int64, log *logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		pipeline:  pipeline,
		maxUpload: maxUpload,
		log:       log,
	}
}

// Submit handles POST /api/v1/intake/submissions
// Accepts multipart form with:
// - requester_key: channel identity of the sender
// - kind: how the file arrived (photo, video, audio, voice, document)
// - note: optional free-text message sent alongside the file
// - file: the document itself; only metadata is used for classification
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// slack for the multipart framing around the file ceiling
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httputil.Error(w, apperrors.BadRequest("file too large or invalid multipart form"))
		return
	}

	requesterKey := r.FormValue("requester_key")
	if requesterKey == "" {
		httputil.Error(w, apperrors.BadRequest("missing requester_key"))
		return
	}

	kind := domain.MessageKind(r.FormValue("kind"))
	if kind == "" {
		kind = domain.KindDocument
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, apperrors.BadRequest("missing file in request"))
		return
	}
	file.Close()

	res, err := h.pipeline.Submit(r.Context(), service.Submission{
		RequesterKey: requesterKey,
		Attachment: domain.Attachment{
			FileID:   uuid.New().String(),
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
		},
		Kind: kind,
		Note: r.FormValue("note"),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, res)
}
