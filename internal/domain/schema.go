package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schema — пользовательская схема извлечения.
//
// Схема описывает, какие поля нужно извлечь из документа и какие
// трансформации выполнить над извлечёнными значениями. Каждый
// ExtractionJob выполняется по конкретной схеме.
type Schema struct {
	// ID — уникальный идентификатор схемы.
	ID uuid.UUID `json:"id"`

	// Name — имя схемы (например, "invoices", "sfda-products").
	Name string `json:"name"`

	// Fields — дерево полей схемы.
	Fields []Field `json:"fields"`

	// IsActive — флаг активности. По неактивным схемам jobs не создаются.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания схемы.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldByID возвращает поле схемы по ID (с учётом вложенных).
func (s *Schema) FieldByID(id string) *Field {
	var find func(fields []*Field) *Field
	find = func(fields []*Field) *Field {
		for _, f := range fields {
			if f.ID == id {
				return f
			}
			if found := find(f.ChildFields()); found != nil {
				return found
			}
		}
		return nil
	}

	roots := make([]*Field, 0, len(s.Fields))
	for i := range s.Fields {
		roots = append(roots, &s.Fields[i])
	}
	return find(roots)
}
