package engine

import (
	"errors"
	"testing"

	"github.com/talalbz/fieldmill/internal/domain"
)

func TestValidate_EmptyFields(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrEmptyFields) {
		t.Errorf("expected ErrEmptyFields, got %v", err)
	}
	if err := Validate([]domain.Field{}); !errors.Is(err, ErrEmptyFields) {
		t.Errorf("expected ErrEmptyFields, got %v", err)
	}
}

func TestValidate_EmptyFieldID(t *testing.T) {
	fields := []domain.Field{
		{ID: "", Name: "Broken", Type: domain.FieldTypePrimitive},
	}

	err := Validate(fields)
	if !errors.Is(err, ErrEmptyFieldID) {
		t.Fatalf("expected ErrEmptyFieldID, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatal("expected *ValidationError")
	}
	if verr.Attr != "id" {
		t.Errorf("expected attr id, got %q", verr.Attr)
	}
}

func TestValidate_DuplicateFieldID(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "First"),
		plainField("a", "Second"),
	}

	err := Validate(fields)
	if !errors.Is(err, ErrDuplicateFieldID) {
		t.Fatalf("expected ErrDuplicateFieldID, got %v", err)
	}

	var verr *ValidationError
	if errors.As(err, &verr) && verr.FieldID != "a" {
		t.Errorf("expected field a, got %q", verr.FieldID)
	}
}

func TestValidate_DuplicateNestedID(t *testing.T) {
	// Дубликат между верхним уровнем и колонкой таблицы
	fields := []domain.Field{
		plainField("amount", "Amount"),
		{
			ID:   "items",
			Name: "Items",
			Type: domain.FieldTypeTable,
			Columns: []domain.Field{
				plainField("amount", "Line Amount"),
			},
		},
	}

	if err := Validate(fields); !errors.Is(err, ErrDuplicateFieldID) {
		t.Errorf("expected ErrDuplicateFieldID, got %v", err)
	}
}

func TestValidate_UnknownFieldType(t *testing.T) {
	fields := []domain.Field{
		{ID: "x", Name: "X", Type: domain.FieldType("matrix")},
	}

	err := Validate(fields)
	if !errors.Is(err, ErrUnknownFieldType) {
		t.Fatalf("expected ErrUnknownFieldType, got %v", err)
	}
}

func TestValidate_UnknownSource(t *testing.T) {
	f := transformField("x", "X", "prompt")
	f.TransformationSource = domain.TransformationSource("webhook")

	err := Validate([]domain.Field{f})
	if !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}

	var verr *ValidationError
	if errors.As(err, &verr) && verr.Attr != "transformation_source" {
		t.Errorf("expected attr transformation_source, got %q", verr.Attr)
	}
}

func TestValidate_ValidTree(t *testing.T) {
	fields := []domain.Field{
		plainField("name", "Name"),
		transformField("category", "Category", "Classify {Name}"),
		{
			ID:   "address",
			Name: "Address",
			Type: domain.FieldTypeObject,
			Children: []domain.Field{
				plainField("city", "City"),
			},
		},
		{
			ID:   "line_items",
			Name: "Line Items",
			Type: domain.FieldTypeTable,
			Columns: []domain.Field{
				plainField("description", "Description"),
				transformField("gl_code", "GL Code", "Code for {Description}"),
			},
		},
	}

	if err := Validate(fields); err != nil {
		t.Errorf("expected valid schema, got %v", err)
	}
}

func TestValidate_UnresolvedRefAllowed(t *testing.T) {
	// Ссылка на несуществующее поле — не ошибка валидации
	fields := []domain.Field{
		transformField("x", "X", "Use {Nonexistent}"),
	}

	if err := Validate(fields); err != nil {
		t.Errorf("unresolved ref should not fail validation, got %v", err)
	}
}
