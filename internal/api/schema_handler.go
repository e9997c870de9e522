package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/talalbz/fieldmill/internal/domain"
	"github.com/talalbz/fieldmill/internal/engine"
)

// ListSchemas возвращает список всех схем.
// GET /api/v1/schemas
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.schemaRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]SchemaResponse, len(schemas))
	for i, s := range schemas {
		result[i] = SchemaFromDomain(s)
	}

	List(w, result, len(result))
}

// CreateSchema создаёт новую схему.
// POST /api/v1/schemas
func (h *Handler) CreateSchema(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		BadRequest(w, "failed to read request body")
		return
	}

	// Структурная проверка документа до декодирования
	if err := ValidateSchemaDocument(body); err != nil {
		InvalidState(w, err.Error())
		return
	}

	var req CreateSchemaRequest
	if err := json.Unmarshal(body, &req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	// Семантическая проверка полей
	if err := engine.Validate(req.Fields); err != nil {
		InvalidState(w, err.Error())
		return
	}

	// Схема с циклом не сохраняется
	graph := engine.BuildGraph(req.Fields)
	if ok, cycles := engine.ValidateDependencies(graph); !ok {
		CycleDetected(w, cycles)
		return
	}

	now := time.Now()
	schema := &domain.Schema{
		ID:        uuid.New(),
		Name:      req.Name,
		Fields:    req.Fields,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.schemaRepo.Create(r.Context(), schema); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, SchemaFromDomain(*schema))
}

// GetSchema возвращает схему по ID или имени.
// GET /api/v1/schemas/{id}
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("id")

	var schema *domain.Schema
	var err error

	// Не-UUID значение трактуется как имя схемы
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		schema, err = h.schemaRepo.GetByID(r.Context(), id)
	} else {
		schema, err = h.schemaRepo.GetByName(r.Context(), ref)
	}
	if HandleRepoError(w, h.logger, err, "schema not found") {
		return
	}

	Success(w, SchemaFromDomain(*schema))
}

// UpdateSchema обновляет схему.
// PUT /api/v1/schemas/{id}
func (h *Handler) UpdateSchema(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schema id")
		return
	}

	var req UpdateSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	schema, err := h.schemaRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "schema not found") {
		return
	}

	if req.Name != nil {
		schema.Name = *req.Name
	}
	if req.IsActive != nil {
		schema.IsActive = *req.IsActive
	}
	if req.Fields != nil {
		if err := engine.Validate(req.Fields); err != nil {
			InvalidState(w, err.Error())
			return
		}
		graph := engine.BuildGraph(req.Fields)
		if ok, cycles := engine.ValidateDependencies(graph); !ok {
			CycleDetected(w, cycles)
			return
		}
		schema.Fields = req.Fields
	}

	if err := h.schemaRepo.Update(r.Context(), schema); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, SchemaFromDomain(*schema))
}

// DeleteSchema удаляет схему.
// DELETE /api/v1/schemas/{id}
func (h *Handler) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schema id")
		return
	}

	if err := h.schemaRepo.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "schema not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// GetSchemaGraph возвращает превью графа зависимостей схемы:
// волны в порядке выполнения, рёбра и предупреждения.
// При цикле — 422 со списком циклических групп.
// GET /api/v1/schemas/{id}/graph
func (h *Handler) GetSchemaGraph(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schema id")
		return
	}

	schema, err := h.schemaRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "schema not found") {
		return
	}

	graph := engine.BuildGraph(schema.Fields)

	waves, err := graph.Waves()
	if err != nil {
		_, cycles := engine.ValidateDependencies(graph)
		CycleDetected(w, cycles)
		return
	}

	resp := GraphResponse{
		Waves:    make([]WaveResponse, len(waves)),
		Edges:    make(map[string][]string),
		Warnings: engine.FindSummaryDependencyWarnings(engine.Flatten(schema.Fields), graph),
	}

	for i, wave := range waves {
		ids := make([]string, len(wave.Fields))
		for j, f := range wave.Fields {
			ids[j] = f.ID
		}
		resp.Waves[i] = WaveResponse{Index: i, Fields: ids}
	}

	for from, tos := range graph.Edges() {
		for to := range tos {
			resp.Edges[from] = append(resp.Edges[from], to)
		}
	}

	Success(w, resp)
}
