package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/talalbz/fieldmill/internal/domain"
)

// Schema DTOs

// CreateSchemaRequest — запрос на создание схемы.
type CreateSchemaRequest struct {
	Name   string         `json:"name"`
	Fields []domain.Field `json:"fields"`
}

// UpdateSchemaRequest — запрос на обновление схемы.
type UpdateSchemaRequest struct {
	Name     *string        `json:"name,omitempty"`
	Fields   []domain.Field `json:"fields,omitempty"`
	IsActive *bool          `json:"is_active,omitempty"`
}

// SchemaResponse — ответ со схемой.
type SchemaResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Fields    []domain.Field `json:"fields"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SchemaFromDomain конвертирует domain.Schema в SchemaResponse.
func SchemaFromDomain(s domain.Schema) SchemaResponse {
	return SchemaResponse{
		ID:        s.ID,
		Name:      s.Name,
		Fields:    s.Fields,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Graph DTOs

// GraphResponse — превью графа зависимостей схемы.
type GraphResponse struct {
	// Waves — волны выполнения в порядке запуска.
	Waves []WaveResponse `json:"waves"`

	// Edges — рёбра графа (fieldID → список зависимых fieldID).
	Edges map[string][]string `json:"edges"`

	// Warnings — предупреждения о summary-полях, зависящих от
	// не-summary полей.
	Warnings []string `json:"warnings,omitempty"`
}

// WaveResponse — одна волна графа.
type WaveResponse struct {
	Index  int      `json:"index"`
	Fields []string `json:"fields"` // field IDs
}

// CycleResponse — ответ при цикле в графе.
type CycleResponse struct {
	// Cycles — группы полей, образующие циклы.
	Cycles [][]string `json:"cycles"`
}

// Job DTOs

// CreateJobRequest — запрос на создание job.
type CreateJobRequest struct {
	// Inputs — уже извлечённые значения полей (fieldID → значение).
	Inputs map[string]any `json:"inputs,omitempty"`
}

// JobResponse — ответ с job.
type JobResponse struct {
	ID         uuid.UUID      `json:"id"`
	SchemaID   uuid.UUID      `json:"schema_id"`
	Status     string         `json:"status"`
	Inputs     map[string]any `json:"inputs,omitempty"`
	Results    map[string]any `json:"results,omitempty"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// JobFromDomain конвертирует domain.Job в JobResponse.
func JobFromDomain(j domain.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		SchemaID:   j.SchemaID,
		Status:     string(j.Status),
		Inputs:     j.Inputs,
		Results:    j.Results,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt,
	}
}

// FieldResultResponse — ответ с результатом одного поля.
type FieldResultResponse struct {
	FieldID   string    `json:"field_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Value     any       `json:"value,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldResultFromDomain конвертирует domain.FieldResult в FieldResultResponse.
func FieldResultFromDomain(fr domain.FieldResult) FieldResultResponse {
	return FieldResultResponse{
		FieldID:   fr.FieldID,
		Name:      fr.Name,
		Status:    string(fr.Status),
		Value:     fr.Value,
		Error:     fr.Error,
		UpdatedAt: fr.UpdatedAt,
	}
}
