package engine

import (
	"errors"
	"testing"

	"github.com/talalbz/fieldmill/internal/domain"
)

func TestWaves_SimpleChain(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
		transformField("c", "Tagline", "{Category}"),
	}

	waves, err := BuildGraph(fields).Waves()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(waves))
	}

	if waves[0].Fields[0].ID != "a" {
		t.Errorf("wave 0 should contain a, got %s", waves[0].Fields[0].ID)
	}
	if waves[1].Fields[0].ID != "b" {
		t.Errorf("wave 1 should contain b, got %s", waves[1].Fields[0].ID)
	}
	if waves[2].Fields[0].ID != "c" {
		t.Errorf("wave 2 should contain c, got %s", waves[2].Fields[0].ID)
	}
}

func TestWaves_Diamond(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
		transformField("c", "Region", "{Name}"),
		transformField("d", "Summary", "{Category} {Region}"),
	}

	waves, err := BuildGraph(fields).Waves()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(waves))
	}

	// b и c независимы — одна волна, порядок как в схеме
	if len(waves[1].Fields) != 2 {
		t.Fatalf("wave 1 should have 2 fields, got %d", len(waves[1].Fields))
	}
	if waves[1].Fields[0].ID != "b" || waves[1].Fields[1].ID != "c" {
		t.Errorf("wave 1 should be [b c] in schema order, got [%s %s]",
			waves[1].Fields[0].ID, waves[1].Fields[1].ID)
	}
}

func TestWaves_DependencyDepth(t *testing.T) {
	// Поле попадает в волну по самой глубокой зависимости:
	// e зависит от a (волна 0) и d (волна 2) → волна 3
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
		transformField("d", "Tagline", "{Category}"),
		transformField("e", "Pitch", "{Name} {Tagline}"),
	}

	idx, err := BuildGraph(fields).WaveIndex()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx["e"] != 3 {
		t.Errorf("expected e in wave 3, got %d", idx["e"])
	}
}

func TestWaves_NoTransformations(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		plainField("b", "Address"),
	}

	waves, err := BuildGraph(fields).Waves()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Все поля без зависимостей — одна волна
	if len(waves) != 1 {
		t.Errorf("expected 1 wave, got %d", len(waves))
	}
	if len(waves[0].Fields) != 2 {
		t.Errorf("expected 2 fields in wave 0, got %d", len(waves[0].Fields))
	}
}

func TestWaves_Cycle(t *testing.T) {
	fields := []domain.Field{
		plainField("n", "Name"),
		transformField("a", "First", "{Second} {Name}"),
		transformField("b", "Second", "{First}"),
	}

	waves, err := BuildGraph(fields).Waves()
	if err == nil {
		t.Fatal("expected cycle error")
	}

	// Ни одной волны не возвращается — проверка до выполнения
	if waves != nil {
		t.Errorf("expected no waves on cycle, got %d", len(waves))
	}

	if !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatal("expected *CycleError")
	}
	if len(cycleErr.FieldIDs) != 2 {
		t.Errorf("expected 2 fields in cycle, got %v", cycleErr.FieldIDs)
	}
}

func TestWaves_SelfCycleImpossible(t *testing.T) {
	// Ссылка на себя отбрасывается при построении — цикла нет
	fields := []domain.Field{
		transformField("t", "Check", "{Check}"),
	}

	waves, err := BuildGraph(fields).Waves()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waves) != 1 {
		t.Errorf("expected 1 wave, got %d", len(waves))
	}
}

func TestWaves_DocumentExtractionScenario(t *testing.T) {
	// Типовая схема: извлечённое имя компании, затем категория,
	// затем слоган и сводка
	fields := []domain.Field{
		plainField("company_name", "Company Name"),
		transformField("category", "Category",
			"Classify the company {Company Name} into an industry"),
		transformField("tagline", "Tagline",
			"Write a tagline for {Company Name}, a {Category} company"),
		transformField("summary", "Summary",
			"Summarize: {Company Name}, {Category}, {Tagline}"),
	}

	idx, err := BuildGraph(fields).WaveIndex()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]int{
		"company_name": 0,
		"category":     1,
		"tagline":      2,
		"summary":      3,
	}
	for id, wave := range expected {
		if idx[id] != wave {
			t.Errorf("field %s: expected wave %d, got %d", id, wave, idx[id])
		}
	}
}
