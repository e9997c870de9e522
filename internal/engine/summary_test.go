package engine

import (
	"testing"

	"github.com/talalbz/fieldmill/internal/domain"
)

func summaryField(f domain.Field) domain.Field {
	f.DisplayInSummary = true
	return f
}

func TestBuildSummaryValues_LeafFieldsCollapse(t *testing.T) {
	fields := []domain.Field{
		summaryField(plainField("name", "Name")),
		summaryField(plainField("category", "Category")),
		plainField("internal", "Internal"),
	}

	results := map[string]any{
		"name":     "Acme",
		"category": "Logistics",
		"internal": "hidden",
	}

	summary := BuildSummaryValues(Flatten(fields), results)

	// Все примитивные summary-поля — в одной записи leaf_summary
	leaf := summary[LeafSummaryKey]
	if leaf == nil {
		t.Fatal("expected leaf_summary entry")
	}
	if leaf["name"] != "Acme" || leaf["category"] != "Logistics" {
		t.Errorf("unexpected leaf summary: %v", leaf)
	}

	// Поле без DisplayInSummary в сводку не попадает
	if _, ok := leaf["internal"]; ok {
		t.Error("non-summary field should not appear in leaf_summary")
	}
	if len(summary) != 1 {
		t.Errorf("expected only leaf_summary entry, got %v", summary)
	}
}

func TestBuildSummaryValues_ObjectFieldOwnEntry(t *testing.T) {
	obj := summaryField(domain.Field{ID: "address", Name: "Address", Type: domain.FieldTypeObject})
	fields := []domain.Field{
		summaryField(plainField("name", "Name")),
		obj,
	}

	results := map[string]any{
		"name":    "Acme",
		"address": map[string]any{"city": "Dubai"},
	}

	summary := BuildSummaryValues(Flatten(fields), results)

	entry := summary["address"]
	if entry == nil {
		t.Fatal("object field should get its own summary entry")
	}
	if entry["city"] != "Dubai" {
		t.Errorf("unexpected object entry: %v", entry)
	}

	if _, ok := summary[LeafSummaryKey]["address"]; ok {
		t.Error("object field should not leak into leaf_summary")
	}
}

func TestBuildSummaryValues_NonMapObjectValueWrapped(t *testing.T) {
	obj := summaryField(domain.Field{ID: "details", Name: "Details", Type: domain.FieldTypeObject})

	summary := BuildSummaryValues(Flatten([]domain.Field{obj}), map[string]any{
		"details": "Error: model unavailable",
	})

	entry := summary["details"]
	if entry == nil {
		t.Fatal("expected entry for object field")
	}
	// Не-map значение оборачивается, чтобы запись осталась структурной
	if entry["value"] != "Error: model unavailable" {
		t.Errorf("expected wrapped value, got %v", entry)
	}
}

func TestBuildSummaryValues_MissingResultSkipped(t *testing.T) {
	fields := []domain.Field{
		summaryField(plainField("a", "A")),
		summaryField(plainField("b", "B")),
	}

	summary := BuildSummaryValues(Flatten(fields), map[string]any{"a": "1"})

	leaf := summary[LeafSummaryKey]
	if _, ok := leaf["b"]; ok {
		t.Error("field without a result should be skipped")
	}
	if leaf["a"] != "1" {
		t.Errorf("unexpected leaf summary: %v", leaf)
	}
}

func TestBuildSummaryValues_Empty(t *testing.T) {
	summary := BuildSummaryValues(nil, nil)
	if len(summary) != 0 {
		t.Errorf("expected empty summary, got %v", summary)
	}
}

func TestFindSummaryDependencyWarnings(t *testing.T) {
	fields := []domain.Field{
		summaryField(plainField("name", "Name")),
		summaryField(transformField("category", "Category", "Classify {Name}")),
		transformField("tagline", "Tagline", "Tagline for {Category}"),
	}

	flat := Flatten(fields)
	g := BuildGraph(fields)

	warnings := FindSummaryDependencyWarnings(flat, g)

	// Category (summary) зависит от Name (summary) — одно предупреждение.
	// Tagline не в сводке, пара Category→Tagline не считается.
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
}

func TestFindSummaryDependencyWarnings_None(t *testing.T) {
	fields := []domain.Field{
		plainField("name", "Name"),
		summaryField(transformField("category", "Category", "Classify {Name}")),
	}

	warnings := FindSummaryDependencyWarnings(Flatten(fields), BuildGraph(fields))
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
