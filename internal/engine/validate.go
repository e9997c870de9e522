package engine

import (
	"fmt"

	"github.com/talalbz/fieldmill/internal/domain"
)

// Допустимые типы полей.
var validFieldTypes = map[domain.FieldType]bool{
	domain.FieldTypePrimitive: true,
	domain.FieldTypeObject:    true,
	domain.FieldTypeList:      true,
	domain.FieldTypeTable:     true,
}

// Допустимые источники трансформаций.
var validSources = map[domain.TransformationSource]bool{
	domain.SourceColumn:   true,
	domain.SourceDocument: true,
}

// Validate выполняет структурную валидацию дерева полей схемы.
//
// Проверяет:
// - Наличие полей
// - Уникальность и непустоту ID (по всему развёрнутому дереву)
// - Корректность типов полей
// - Корректность источника у трансформаций
//
// Нерезолвленные ссылки в промптах ошибкой не считаются — они
// отбрасываются при построении графа. Циклы зависимостей проверяются
// отдельно через Graph.Waves перед выполнением.
func Validate(fields []domain.Field) error {
	if len(fields) == 0 {
		return ErrEmptyFields
	}

	seen := make(map[string]bool)

	for _, f := range Flatten(fields) {
		if f.ID == "" {
			return NewValidationError("", "id",
				fmt.Sprintf("field %q has empty ID", f.Name), ErrEmptyFieldID)
		}

		if seen[f.ID] {
			return NewValidationError(f.ID, "id",
				fmt.Sprintf("duplicate field ID: %s", f.ID), ErrDuplicateFieldID)
		}
		seen[f.ID] = true

		if !validFieldTypes[f.Type] {
			return NewValidationError(f.ID, "type",
				fmt.Sprintf("unknown field type: %s", f.Type), ErrUnknownFieldType)
		}

		if f.IsTransformation && !validSources[f.TransformationSource] {
			return NewValidationError(f.ID, "transformation_source",
				fmt.Sprintf("unknown transformation source: %s", f.TransformationSource),
				ErrUnknownSource)
		}
	}

	return nil
}
