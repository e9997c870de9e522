package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Schemas
	mux.Handle("GET /api/v1/schemas", chain(http.HandlerFunc(h.ListSchemas)))
	mux.Handle("POST /api/v1/schemas", chain(http.HandlerFunc(h.CreateSchema)))
	mux.Handle("GET /api/v1/schemas/{id}", chain(http.HandlerFunc(h.GetSchema)))
	mux.Handle("PUT /api/v1/schemas/{id}", chain(http.HandlerFunc(h.UpdateSchema)))
	mux.Handle("DELETE /api/v1/schemas/{id}", chain(http.HandlerFunc(h.DeleteSchema)))

	// Graph preview: волны и предупреждения без запуска job
	mux.Handle("GET /api/v1/schemas/{id}/graph", chain(http.HandlerFunc(h.GetSchemaGraph)))

	// Jobs
	mux.Handle("GET /api/v1/jobs", chain(http.HandlerFunc(h.ListJobs)))
	mux.Handle("POST /api/v1/schemas/{id}/jobs", chain(http.HandlerFunc(h.CreateJob)))
	mux.Handle("GET /api/v1/jobs/{id}", chain(http.HandlerFunc(h.GetJob)))
	mux.Handle("POST /api/v1/jobs/{id}/cancel", chain(http.HandlerFunc(h.CancelJob)))
	mux.Handle("GET /api/v1/jobs/{id}/results", chain(http.HandlerFunc(h.ListJobResults)))
	mux.Handle("GET /api/v1/jobs/{id}/summary", chain(http.HandlerFunc(h.GetJobSummary)))
}
