package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/talalbz/fieldmill/internal/domain"
	"github.com/talalbz/fieldmill/internal/engine"
	"github.com/talalbz/fieldmill/internal/repo"
)

// ListJobs возвращает список jobs с фильтрацией.
// GET /api/v1/jobs?schema_id=...&status=...&limit=...&offset=...
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := repo.JobFilter{}

	if schemaIDStr := r.URL.Query().Get("schema_id"); schemaIDStr != "" {
		schemaID, err := uuid.Parse(schemaIDStr)
		if err != nil {
			BadRequest(w, "invalid schema_id")
			return
		}
		filter.SchemaID = &schemaID
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.JobStatus(status)
	}

	filter.Limit = queryInt(r, "limit", 50)
	filter.Offset = queryInt(r, "offset", 0)

	jobs, err := h.jobRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		result[i] = JobFromDomain(job)
	}

	List(w, result, len(result))
}

// CreateJob создаёт новый job для схемы.
// POST /api/v1/schemas/{id}/jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	schemaID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schema id")
		return
	}

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	schema, err := h.schemaRepo.GetByID(r.Context(), schemaID)
	if HandleRepoError(w, h.logger, err, "schema not found") {
		return
	}

	if !schema.IsActive {
		InvalidState(w, repo.ErrSchemaInactive.Error())
		return
	}

	job := &domain.Job{
		ID:        uuid.New(),
		SchemaID:  schema.ID,
		Status:    domain.JobStatusPending,
		Inputs:    req.Inputs,
		CreatedAt: time.Now(),
	}

	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Публикуем событие в очередь
	if h.publisher != nil {
		if err := h.publisher.PublishJobPending(r.Context(), job.ID); err != nil {
			h.logger.Warn("failed to publish job.pending", "job_id", job.ID, "error", err)
		}
	}

	Created(w, JobFromDomain(*job))
}

// GetJob возвращает job по ID.
// GET /api/v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, JobFromDomain(*job))
}

// CancelJob отменяет job.
// POST /api/v1/jobs/{id}/cancel
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	if job.IsFinished() {
		InvalidState(w, "job is already finished")
		return
	}

	job.MarkCancelled()

	if err := h.jobRepo.Update(r.Context(), job); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, JobFromDomain(*job))
}

// ListJobResults возвращает результаты полей job.
// GET /api/v1/jobs/{id}/results
func (h *Handler) ListJobResults(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	// Проверяем, что job существует
	_, err = h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	results, err := h.jobRepo.ListFieldResults(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FieldResultResponse, len(results))
	for i, fr := range results {
		result[i] = FieldResultFromDomain(fr)
	}

	List(w, result, len(result))
}

// GetJobSummary возвращает summary-представление результатов job:
// объектные поля отдельными записями, листовые — в leaf_summary.
// GET /api/v1/jobs/{id}/summary
func (h *Handler) GetJobSummary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	schema, err := h.schemaRepo.GetByID(r.Context(), job.SchemaID)
	if HandleRepoError(w, h.logger, err, "schema not found") {
		return
	}

	summary := engine.BuildSummaryValues(engine.Flatten(schema.Fields), job.Results)
	Success(w, summary)
}

// queryInt парсит целочисленный query-параметр с дефолтным значением.
func queryInt(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
