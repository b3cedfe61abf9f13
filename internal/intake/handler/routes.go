package handler

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the intake API under /api/v1.
func Routes(r chi.Router, submissions *SubmissionHandler, cases *CaseHandler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/intake/submissions", submissions.Submit)

		r.Route("/cases", func(r chi.Router) {
			r.Get("/", cases.List)
			r.Get("/stats", cases.Stats)
			r.Get("/{caseID}", cases.Get)
			r.Put("/{caseID}/status", cases.UpdateStatus)
			r.Post("/{caseID}/referrals", cases.Refer)
		})
	})
}
