package profile_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/profile"
	"github.com/munidigital/tramite-backend/pkg/logger"
	"github.com/munidigital/tramite-backend/pkg/rowstore"
)

type stubDirectory struct {
	profiles map[string]*domain.RequesterProfile
	err      error
	calls    int
}

func (s *stubDirectory) Lookup(_ context.Context, key string) (*domain.RequesterProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.profiles[key]; ok {
		return p, nil
	}
	return nil, profile.ErrProfileNotFound
}

func TestProvider_CachesLookups(t *testing.T) {
	dir := &stubDirectory{profiles: map[string]*domain.RequesterProfile{
		"emp-1": {Key: "emp-1", Name: "Ana Torres", Area: domain.AreaObras, Access: domain.AccessUser},
	}}
	p := profile.NewProvider(dir, 16, time.Minute, logger.Nop())

	first := p.Resolve(context.Background(), "emp-1")
	second := p.Resolve(context.Background(), "emp-1")

	assert.Equal(t, "Ana Torres", first.Name)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, dir.calls, "second resolve must hit the cache")
}

func TestProvider_UnknownRequesterBecomesGuest(t *testing.T) {
	dir := &stubDirectory{}
	p := profile.NewProvider(dir, 16, time.Minute, logger.Nop())

	got := p.Resolve(context.Background(), "stranger")

	require.NotNil(t, got)
	assert.Equal(t, domain.AreaCiudadano, got.Area)
	assert.False(t, got.IsInternal())

	// the guest answer is cached too
	p.Resolve(context.Background(), "stranger")
	assert.Equal(t, 1, dir.calls)
}

func TestProvider_DirectoryFailureNotCached(t *testing.T) {
	dir := &stubDirectory{err: errors.New("connection refused")}
	p := profile.NewProvider(dir, 16, time.Minute, logger.Nop())

	got := p.Resolve(context.Background(), "emp-1")

	require.NotNil(t, got)
	assert.Equal(t, domain.AccessGuest, got.Access)

	p.Resolve(context.Background(), "emp-1")
	assert.Equal(t, 2, dir.calls, "transient failures must retry the directory")
}

func TestHTTPDirectory_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/profiles/emp-7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"key":"emp-7","name":"Luis Quispe","area":"Tesorería","role":"Tesorero","access":"admin"}}`))
	}))
	defer srv.Close()

	dir := profile.NewHTTPDirectory(srv.URL, logger.Nop())
	got, err := dir.Lookup(context.Background(), "emp-7")

	require.NoError(t, err)
	assert.Equal(t, "Luis Quispe", got.Name)
	assert.Equal(t, domain.AreaTesoreria, got.Area)
	assert.True(t, got.IsAdmin())
	assert.True(t, got.IsInternal())
}

func TestHTTPDirectory_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := profile.NewHTTPDirectory(srv.URL, logger.Nop())
	_, err := dir.Lookup(context.Background(), "ghost")

	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestRowStoreDirectory_Lookup(t *testing.T) {
	store := rowstore.NewMemoryStore()
	require.NoError(t, store.Append(context.Background(), "Perfiles",
		[]string{"key", "nombre", "area", "cargo", "acceso", "email", "telefono"}))
	require.NoError(t, store.Append(context.Background(), "Perfiles",
		[]string{"emp-3", "Rosa Díaz", domain.AreaDesarrolloSocial, "Subgerente", "admin", "rdiaz@muni.gob.pe", ""}))

	dir := profile.NewRowStoreDirectory(store, "Perfiles")

	got, err := dir.Lookup(context.Background(), "emp-3")
	require.NoError(t, err)
	assert.Equal(t, "Rosa Díaz", got.Name)
	assert.Equal(t, domain.AccessAdmin, got.Access)
	assert.True(t, got.IsInternal())

	_, err = dir.Lookup(context.Background(), "nobody")
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestRowStoreDirectory_UnknownAccessDefaultsToUser(t *testing.T) {
	store := rowstore.NewMemoryStore()
	require.NoError(t, store.Append(context.Background(), "Perfiles",
		[]string{"emp-4", "Mario León", domain.AreaObras, "Asistente", "???", "", ""}))

	dir := profile.NewRowStoreDirectory(store, "Perfiles")

	got, err := dir.Lookup(context.Background(), "emp-4")
	require.NoError(t, err)
	assert.Equal(t, domain.AccessUser, got.Access)
}
