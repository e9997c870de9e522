package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job — экземпляр извлечения по схеме (extraction job).
//
// Job создаётся когда:
// - Пользователь загружает документ и запускает извлечение (API/CLI)
// - Пользователь перезапускает трансформации по уже извлечённым значениям
//
// Inputs содержит значения, извлечённые из документа до запуска движка
// (поля без трансформаций). Results накапливает итоговые значения всех
// полей по мере завершения волн.
type Job struct {
	// ID — уникальный идентификатор job.
	ID uuid.UUID `json:"id"`

	// SchemaID — ссылка на схему, по которой идёт извлечение.
	SchemaID uuid.UUID `json:"schema_id"`

	// Status — текущий статус выполнения.
	Status JobStatus `json:"status"`

	// Inputs — уже извлечённые значения полей (fieldID → значение).
	// Это стартовое наполнение Results перед первой волной.
	Inputs map[string]any `json:"inputs,omitempty"`

	// Results — итоговые значения полей (fieldID → значение).
	// Для полей с ERROR/BLOCKED здесь лежит строка с описанием ошибки,
	// чтобы потребителям всегда было что показать.
	Results map[string]any `json:"results,omitempty"`

	// StartedAt — время начала выполнения (статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст структурной ошибки при статусе FAILED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания job.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если job ещё не завершён.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// IsFinished возвращает true, если job завершён (в любом статусе).
func (j *Job) IsFinished() bool {
	return j.Status.IsTerminal()
}

// MarkRunning переводит job в статус RUNNING.
func (j *Job) MarkRunning() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// MarkSucceeded переводит job в статус SUCCEEDED с результатами.
func (j *Job) MarkSucceeded(results map[string]any) {
	now := time.Now()
	j.Status = JobStatusSucceeded
	j.FinishedAt = &now
	j.Results = results
}

// MarkFailed переводит job в статус FAILED с ошибкой.
func (j *Job) MarkFailed(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.FinishedAt = &now
	j.Error = err
}

// MarkCancelled переводит job в статус CANCELLED.
func (j *Job) MarkCancelled() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.FinishedAt = &now
}

// FieldResult — результат отдельного поля в рамках job.
//
// Хранится построчно, чтобы UI мог показывать статус каждой ячейки
// независимо, не дожидаясь завершения всего job.
type FieldResult struct {
	// JobID — ссылка на job.
	JobID uuid.UUID `json:"job_id"`

	// FieldID — ID поля из схемы.
	FieldID string `json:"field_id"`

	// Name — имя поля (копия Field.Name для удобства).
	Name string `json:"name"`

	// Status — статус поля.
	Status FieldStatus `json:"status"`

	// Value — итоговое значение поля.
	Value any `json:"value,omitempty"`

	// Error — текст ошибки при статусе ERROR/BLOCKED.
	Error string `json:"error,omitempty"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}
