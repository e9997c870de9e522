package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talalbz/fieldmill/internal/domain"
)

// SchemaRepo — репозиторий для работы со схемами извлечения.
type SchemaRepo struct {
	pool *pgxpool.Pool
}

// NewSchemaRepo создаёт новый SchemaRepo.
func NewSchemaRepo(pool *pgxpool.Pool) *SchemaRepo {
	return &SchemaRepo{pool: pool}
}

// Create создаёт новую схему.
func (r *SchemaRepo) Create(ctx context.Context, schema *domain.Schema) error {
	fieldsJSON, err := json.Marshal(schema.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	query := `
		INSERT INTO schemas (id, name, fields, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query,
		schema.ID,
		schema.Name,
		fieldsJSON,
		schema.IsActive,
		schema.CreatedAt,
		schema.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: schema %q", ErrAlreadyExists, schema.Name)
		}
		return fmt.Errorf("insert schema: %w", err)
	}
	return nil
}

// GetByID возвращает схему по ID.
func (r *SchemaRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Schema, error) {
	query := `
		SELECT id, name, fields, is_active, created_at, updated_at
		FROM schemas
		WHERE id = $1
	`
	return r.scanSchema(r.pool.QueryRow(ctx, query, id))
}

// GetByName возвращает схему по имени.
func (r *SchemaRepo) GetByName(ctx context.Context, name string) (*domain.Schema, error) {
	query := `
		SELECT id, name, fields, is_active, created_at, updated_at
		FROM schemas
		WHERE name = $1
	`
	return r.scanSchema(r.pool.QueryRow(ctx, query, name))
}

// List возвращает все схемы.
func (r *SchemaRepo) List(ctx context.Context) ([]domain.Schema, error) {
	query := `
		SELECT id, name, fields, is_active, created_at, updated_at
		FROM schemas
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query schemas: %w", err)
	}
	defer rows.Close()

	var schemas []domain.Schema
	for rows.Next() {
		schema, err := r.scanSchema(rows)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, *schema)
	}
	return schemas, rows.Err()
}

// Update обновляет схему (поля, имя, активность).
func (r *SchemaRepo) Update(ctx context.Context, schema *domain.Schema) error {
	fieldsJSON, err := json.Marshal(schema.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	schema.UpdatedAt = time.Now()

	query := `
		UPDATE schemas
		SET name = $2, fields = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		schema.ID,
		schema.Name,
		fieldsJSON,
		schema.IsActive,
		schema.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update schema: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет схему.
func (r *SchemaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schemas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schema: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanSchema сканирует одну строку в domain.Schema.
func (r *SchemaRepo) scanSchema(row pgx.Row) (*domain.Schema, error) {
	var schema domain.Schema
	var fieldsJSON []byte

	err := row.Scan(
		&schema.ID,
		&schema.Name,
		&fieldsJSON,
		&schema.IsActive,
		&schema.CreatedAt,
		&schema.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan schema: %w", err)
	}

	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &schema.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}

	return &schema, nil
}
