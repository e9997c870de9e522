package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talalbz/fieldmill/internal/domain"
)

// JobRepo — репозиторий для работы с extraction jobs
// и построчными результатами полей.
type JobRepo struct {
	pool *pgxpool.Pool
}

// NewJobRepo создаёт новый JobRepo.
func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// JobFilter — фильтр для выборки jobs.
type JobFilter struct {
	SchemaID *uuid.UUID
	Status   domain.JobStatus
	Limit    int
	Offset   int
}

// Create создаёт новый job.
func (r *JobRepo) Create(ctx context.Context, job *domain.Job) error {
	inputsJSON, err := json.Marshal(job.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}

	query := `
		INSERT INTO jobs (id, schema_id, status, inputs, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.SchemaID,
		job.Status,
		inputsJSON,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID возвращает job по ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, schema_id, status, inputs, results, started_at, finished_at, error, created_at
		FROM jobs
		WHERE id = $1
	`
	return r.scanJob(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список jobs с фильтрацией.
func (r *JobRepo) List(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	query := `
		SELECT id, schema_id, status, inputs, results, started_at, finished_at, error, created_at
		FROM jobs
		WHERE ($1::uuid IS NULL OR schema_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query,
		nullUUID(filter.SchemaID),
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := r.scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ListPending возвращает pending jobs для polling fallback.
func (r *JobRepo) ListPending(ctx context.Context, limit int) ([]domain.Job, error) {
	return r.List(ctx, JobFilter{Status: domain.JobStatusPending, Limit: limit})
}

// Update обновляет статус и результаты job.
func (r *JobRepo) Update(ctx context.Context, job *domain.Job) error {
	resultsJSON, err := json.Marshal(job.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `
		UPDATE jobs
		SET status = $2, results = $3, started_at = $4, finished_at = $5, error = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Status,
		resultsJSON,
		job.StartedAt,
		job.FinishedAt,
		nullString(job.Error),
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertFieldResult сохраняет результат поля (insert или update).
// Вызывается инкрементально по мере завершения полей внутри волн.
func (r *JobRepo) UpsertFieldResult(ctx context.Context, fr *domain.FieldResult) error {
	valueJSON, err := json.Marshal(fr.Value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	query := `
		INSERT INTO field_results (job_id, field_id, name, status, value, error, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (job_id, field_id)
		DO UPDATE SET status = $4, value = $5, error = $6, updated_at = $7
	`
	_, err = r.pool.Exec(ctx, query,
		fr.JobID,
		fr.FieldID,
		fr.Name,
		fr.Status,
		valueJSON,
		nullString(fr.Error),
		fr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert field result: %w", err)
	}
	return nil
}

// ListFieldResults возвращает результаты полей job.
func (r *JobRepo) ListFieldResults(ctx context.Context, jobID uuid.UUID) ([]domain.FieldResult, error) {
	query := `
		SELECT job_id, field_id, name, status, value, error, updated_at
		FROM field_results
		WHERE job_id = $1
		ORDER BY field_id
	`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("query field results: %w", err)
	}
	defer rows.Close()

	var results []domain.FieldResult
	for rows.Next() {
		var fr domain.FieldResult
		var valueJSON []byte
		var errText *string

		if err := rows.Scan(
			&fr.JobID,
			&fr.FieldID,
			&fr.Name,
			&fr.Status,
			&valueJSON,
			&errText,
			&fr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan field result: %w", err)
		}

		if len(valueJSON) > 0 {
			if err := json.Unmarshal(valueJSON, &fr.Value); err != nil {
				return nil, fmt.Errorf("unmarshal value: %w", err)
			}
		}
		if errText != nil {
			fr.Error = *errText
		}

		results = append(results, fr)
	}
	return results, rows.Err()
}

// DeleteFinishedBefore удаляет завершённые jobs старше cutoff.
// Используется retention-очисткой в runner'е. Результаты полей
// удаляются каскадом (FK с ON DELETE CASCADE).
func (r *JobRepo) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM jobs
		WHERE finished_at IS NOT NULL AND finished_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete finished jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanJob сканирует одну строку в domain.Job.
func (r *JobRepo) scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var inputsJSON, resultsJSON []byte
	var errText *string

	err := row.Scan(
		&job.ID,
		&job.SchemaID,
		&job.Status,
		&inputsJSON,
		&resultsJSON,
		&job.StartedAt,
		&job.FinishedAt,
		&errText,
		&job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if len(inputsJSON) > 0 {
		if err := json.Unmarshal(inputsJSON, &job.Inputs); err != nil {
			return nil, fmt.Errorf("unmarshal inputs: %w", err)
		}
	}
	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &job.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	if errText != nil {
		job.Error = *errText
	}

	return &job, nil
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
