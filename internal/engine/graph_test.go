package engine

import (
	"testing"

	"github.com/talalbz/fieldmill/internal/domain"
)

// transformField — хелпер для поля-трансформации с промптом.
func transformField(id, name, prompt string) domain.Field {
	return domain.Field{
		ID:                   id,
		Name:                 name,
		Type:                 domain.FieldTypePrimitive,
		IsTransformation:     true,
		TransformationSource: domain.SourceColumn,
		TransformationConfig: &domain.TransformationConfig{Prompt: prompt},
	}
}

// plainField — хелпер для обычного извлекаемого поля.
func plainField(id, name string) domain.Field {
	return domain.Field{ID: id, Name: name, Type: domain.FieldTypePrimitive}
}

func TestBuildGraph_SimpleChain(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "Classify {Name}"),
		transformField("c", "Tagline", "Write a tagline for {Category}"),
	}

	g := BuildGraph(fields)

	if g.Size() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.Size())
	}

	// Проверяем зависимости
	nodeB := g.Node("b")
	if len(nodeB.DependsOn) != 1 || nodeB.DependsOn[0].ID != "a" {
		t.Error("node b should depend on a")
	}

	nodeC := g.Node("c")
	if len(nodeC.DependsOn) != 1 || nodeC.DependsOn[0].ID != "b" {
		t.Error("node c should depend on b")
	}

	// Проверяем inDegree
	if g.Node("a").InDegree != 0 {
		t.Error("a should have inDegree 0")
	}
	if g.Node("b").InDegree != 1 {
		t.Error("b should have inDegree 1")
	}
}

func TestBuildGraph_Diamond(t *testing.T) {
	// a → b → d
	// a → c → d
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
		transformField("c", "Region", "{Name}"),
		transformField("d", "Summary", "{Category} and {Region}"),
	}

	g := BuildGraph(fields)

	nodeD := g.Node("d")
	if len(nodeD.DependsOn) != 2 {
		t.Errorf("node d should have 2 dependencies, got %d", len(nodeD.DependsOn))
	}
	if nodeD.InDegree != 2 {
		t.Errorf("node d should have inDegree 2, got %d", nodeD.InDegree)
	}

	if len(g.Node("a").Dependents) != 2 {
		t.Errorf("node a should have 2 dependents, got %d", len(g.Node("a").Dependents))
	}
}

func TestBuildGraph_RefByID(t *testing.T) {
	// Ссылка не совпадает ни с одним именем — резолвится по ID
	fields := []domain.Field{
		plainField("supplier_name", "Supplier"),
		transformField("t", "Check", "Verify {supplier_name}"),
	}

	g := BuildGraph(fields)

	if len(g.Node("t").DependsOn) != 1 {
		t.Fatalf("expected ref to resolve by field ID")
	}
	if g.Node("t").DependsOn[0].ID != "supplier_name" {
		t.Errorf("expected dependency on supplier_name, got %s", g.Node("t").DependsOn[0].ID)
	}
}

func TestBuildGraph_NamePrecedesID(t *testing.T) {
	// Ссылка совпадает и с именем одного поля, и с ID другого —
	// выигрывает имя
	fields := []domain.Field{
		plainField("x", "total"),
		plainField("total", "Grand Total"),
		transformField("t", "Check", "{total}"),
	}

	g := BuildGraph(fields)

	deps := g.Dependencies("t")
	if len(deps) != 1 || deps[0] != "x" {
		t.Errorf("expected dependency on x (name match), got %v", deps)
	}
}

func TestBuildGraph_NameCollision(t *testing.T) {
	// Два поля с одним именем — выигрывает первое в порядке схемы
	fields := []domain.Field{
		plainField("first", "Amount"),
		plainField("second", "Amount"),
		transformField("t", "Check", "{Amount}"),
	}

	g := BuildGraph(fields)

	deps := g.Dependencies("t")
	if len(deps) != 1 || deps[0] != "first" {
		t.Errorf("expected dependency on first, got %v", deps)
	}
}

func TestBuildGraph_UnresolvedRefDropped(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("t", "Check", "Use {Name} and {NoSuchField}"),
	}

	g := BuildGraph(fields)

	// Опечатка в промпте не валит построение графа
	if len(g.Node("t").DependsOn) != 1 {
		t.Errorf("unresolved ref should be dropped, got deps %v", g.Dependencies("t"))
	}
}

func TestBuildGraph_SelfRefDropped(t *testing.T) {
	fields := []domain.Field{
		transformField("t", "Check", "Refine {Check}"),
	}

	g := BuildGraph(fields)

	if g.Node("t").InDegree != 0 {
		t.Error("self reference should not create an edge")
	}
}

func TestBuildGraph_DuplicateRefSingleEdge(t *testing.T) {
	// Одно поле упомянуто дважды — ребро одно, InDegree 1
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("t", "Check", "{Name} then again {Name}"),
	}

	g := BuildGraph(fields)

	if g.Node("t").InDegree != 1 {
		t.Errorf("expected inDegree 1, got %d", g.Node("t").InDegree)
	}
}

func TestBuildGraph_NestedFields(t *testing.T) {
	// Трансформация внутри object зависит от колонки таблицы
	fields := []domain.Field{
		{
			ID:   "items",
			Name: "Items",
			Type: domain.FieldTypeTable,
			Columns: []domain.Field{
				plainField("price", "Price"),
			},
		},
		{
			ID:   "totals",
			Name: "Totals",
			Type: domain.FieldTypeObject,
			Children: []domain.Field{
				transformField("sum", "Sum", "Add up {Price}"),
			},
		},
	}

	g := BuildGraph(fields)

	if g.Size() != 4 {
		t.Errorf("expected 4 nodes (nested fields flattened), got %d", g.Size())
	}

	deps := g.Dependencies("sum")
	if len(deps) != 1 || deps[0] != "price" {
		t.Errorf("expected sum to depend on price, got %v", deps)
	}
}

func TestBuildGraph_Pure(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
	}

	BuildGraph(fields)
	g := BuildGraph(fields)

	// Повторное построение даёт тот же граф: InDegree не накапливается
	if g.Node("b").InDegree != 1 {
		t.Errorf("expected inDegree 1 after rebuild, got %d", g.Node("b").InDegree)
	}
}

func TestValidateDependencies_Acyclic(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
	}

	valid, cycles := ValidateDependencies(BuildGraph(fields))
	if !valid {
		t.Error("expected graph to be valid")
	}
	if cycles != nil {
		t.Errorf("expected no cycles, got %v", cycles)
	}
}

func TestValidateDependencies_Cycle(t *testing.T) {
	fields := []domain.Field{
		transformField("a", "First", "{Second}"),
		transformField("b", "Second", "{First}"),
		plainField("c", "Name"),
	}

	valid, cycles := ValidateDependencies(BuildGraph(fields))
	if valid {
		t.Fatal("expected cycle to be detected")
	}
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle group, got %d", len(cycles))
	}
	if len(cycles[0]) != 2 {
		t.Errorf("expected 2 fields in cycle, got %v", cycles[0])
	}
}

func TestValidateDependencies_TwoCycleGroups(t *testing.T) {
	fields := []domain.Field{
		transformField("a", "A", "{B}"),
		transformField("b", "B", "{A}"),
		transformField("x", "X", "{Y}"),
		transformField("y", "Y", "{X}"),
	}

	valid, cycles := ValidateDependencies(BuildGraph(fields))
	if valid {
		t.Fatal("expected cycles to be detected")
	}
	if len(cycles) != 2 {
		t.Errorf("expected 2 independent cycle groups, got %d: %v", len(cycles), cycles)
	}
}

func TestGraph_DependenciesAndEdges(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		plainField("b", "City"),
		transformField("c", "Blurb", "{Name} from {City}"),
	}

	g := BuildGraph(fields)

	deps := g.Dependencies("c")
	if len(deps) != 2 {
		t.Fatalf("expected 2 dependencies, got %v", deps)
	}

	if got := g.Dependencies("missing"); got != nil {
		t.Errorf("unknown field should have nil dependencies, got %v", got)
	}

	edges := g.Edges()
	if !edges["c"]["a"] || !edges["c"]["b"] {
		t.Errorf("expected edges c→{a,b}, got %v", edges["c"])
	}
	if len(edges["a"]) != 0 {
		t.Errorf("plain field should have no dependency edges, got %v", edges["a"])
	}
}
