package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/service"
	apperrors "github.com/munidigital/tramite-backend/pkg/errors"
	"github.com/munidigital/tramite-backend/pkg/httputil"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// CaseHandler handles case directory requests
type CaseHandler struct {
	directory *service.DirectoryService
	validate  *validator.Validate
	log       *logger.Logger
}

// NewCaseHandler creates the case directory handler
func NewCaseHandler(directory *service.DirectoryService, log *logger.Logger) *CaseHandler {
	return &CaseHandler{
		directory: directory,
		validate:  validator.New(),
		log:       log,
	}
}

// List handles GET /api/v1/cases?status=&area=
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	area := r.URL.Query().Get("area")

	cases := h.directory.List(r.Context(), status, area)
	httputil.JSON(w, http.StatusOK, cases)
}

// Get handles GET /api/v1/cases/{caseID}
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.directory.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rec)
}

// Stats handles GET /api/v1/cases/stats
func (h *CaseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.directory.Stats(r.Context()))
}

// UpdateStatusRequest is the body of PUT /api/v1/cases/{caseID}/status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// UpdateStatus handles PUT /api/v1/cases/{caseID}/status
func (h *CaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(w, apperrors.Validation(map[string]string{"status": "required"}))
		return
	}

	rec, err := h.directory.UpdateStatus(r.Context(), chi.URLParam(r, "caseID"), domain.CaseStatus(req.Status), req.Note)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rec)
}

// ReferralRequest is the body of POST /api/v1/cases/{caseID}/referrals
type ReferralRequest struct {
	Area         string `json:"area" validate:"required"`
	Owner        string `json:"owner"`
	ReferralType string `json:"referral_type"`
}

// Refer handles POST /api/v1/cases/{caseID}/referrals
func (h *CaseHandler) Refer(w http.ResponseWriter, r *http.Request) {
	var req ReferralRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(w, apperrors.Validation(map[string]string{"area": "required"}))
		return
	}

	rec, err := h.directory.Refer(r.Context(), chi.URLParam(r, "caseID"), req.Area, req.Owner, req.ReferralType)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rec)
}
