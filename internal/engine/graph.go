package engine

import (
	"errors"

	"github.com/talalbz/fieldmill/internal/domain"
)

// Node — узел в графе зависимостей полей.
type Node struct {
	// Field — поле схемы.
	Field *domain.Field

	// ID — идентификатор узла (равен Field.ID).
	ID string

	// InDegree — количество входящих рёбер (зависимостей).
	InDegree int

	// DependsOn — узлы, от которых зависит этот узел.
	DependsOn []*Node

	// Dependents — узлы, которые зависят от этого узла.
	Dependents []*Node
}

// Graph — направленный граф зависимостей полей схемы.
//
// Ребро A → B означает "B зависит от A": значение A должно быть
// получено до запуска трансформации B.
type Graph struct {
	// Nodes — все узлы графа (fieldID → Node).
	Nodes map[string]*Node

	// ordered — узлы в порядке обхода дерева схемы.
	// Используется для детерминированного порядка внутри волн.
	ordered []*Node
}

// Flatten разворачивает дерево полей в плоский список.
//
// Рекурсивно обходит вложенные поля: children у object,
// item у list, columns у table. Порядок — порядок обхода в глубину.
func Flatten(fields []domain.Field) []*domain.Field {
	var out []*domain.Field

	var walk func(f *domain.Field)
	walk = func(f *domain.Field) {
		out = append(out, f)
		for _, child := range f.ChildFields() {
			walk(child)
		}
	}

	for i := range fields {
		walk(&fields[i])
	}

	return out
}

// BuildGraph строит граф зависимостей по дереву полей схемы.
//
// Для каждого поля-трансформации из шаблона промпта извлекаются
// {FieldName} токены; каждая ссылка резолвится сначала по имени поля,
// затем по ID. Нерезолвленные ссылки молча отбрасываются — опечатка
// в промпте не валит построение графа.
//
// Функция чистая: не модифицирует поля и не имеет побочных эффектов.
// Цикличность здесь не проверяется — см. Graph.Waves и
// ValidateDependencies.
func BuildGraph(fields []domain.Field) *Graph {
	flat := Flatten(fields)

	g := &Graph{
		Nodes:   make(map[string]*Node, len(flat)),
		ordered: make([]*Node, 0, len(flat)),
	}

	// Первый проход: создаём узлы и индекс имя → ID
	byName := make(map[string]*Node, len(flat))
	for _, f := range flat {
		node := &Node{
			Field:      f,
			ID:         f.ID,
			DependsOn:  make([]*Node, 0),
			Dependents: make([]*Node, 0),
		}
		g.Nodes[f.ID] = node
		g.ordered = append(g.ordered, node)

		// При коллизии имён выигрывает первое поле в порядке схемы
		if _, exists := byName[f.Name]; !exists {
			byName[f.Name] = node
		}
	}

	// Второй проход: извлекаем ссылки и связываем узлы
	for _, f := range flat {
		if !f.IsTransformation {
			continue
		}

		node := g.Nodes[f.ID]

		for _, ref := range ExtractRefs(f.TransformationConfig.Template()) {
			dep := byName[ref]
			if dep == nil {
				dep = g.Nodes[ref]
			}
			if dep == nil || dep.ID == node.ID {
				// Нерезолвленная ссылка или ссылка на себя через имя —
				// молча пропускаем
				continue
			}
			g.addEdge(dep, node)
		}
	}

	return g
}

// addEdge добавляет ребро from → to с защитой от дубликатов,
// чтобы не учитывать InDegree дважды.
func (g *Graph) addEdge(from, to *Node) {
	for _, dep := range to.DependsOn {
		if dep.ID == from.ID {
			return // уже связаны
		}
	}
	from.Dependents = append(from.Dependents, to)
	to.DependsOn = append(to.DependsOn, from)
	to.InDegree++
}

// Node возвращает узел по ID поля.
func (g *Graph) Node(id string) *Node {
	return g.Nodes[id]
}

// Size возвращает количество узлов в графе.
func (g *Graph) Size() int {
	return len(g.Nodes)
}

// Dependencies возвращает ID полей, от которых зависит поле.
func (g *Graph) Dependencies(fieldID string) []string {
	node := g.Nodes[fieldID]
	if node == nil {
		return nil
	}

	out := make([]string, 0, len(node.DependsOn))
	for _, dep := range node.DependsOn {
		out = append(out, dep.ID)
	}
	return out
}

// Dependents возвращает ID полей, которые напрямую зависят от поля.
// Используется для предупреждений сводки и для распространения блокировки.
func (g *Graph) Dependents(fieldID string) []string {
	node := g.Nodes[fieldID]
	if node == nil {
		return nil
	}

	out := make([]string, 0, len(node.Dependents))
	for _, dep := range node.Dependents {
		out = append(out, dep.ID)
	}
	return out
}

// Edges возвращает рёбра графа: fieldID → множество его зависимостей.
func (g *Graph) Edges() map[string]map[string]bool {
	edges := make(map[string]map[string]bool, len(g.Nodes))
	for id, node := range g.Nodes {
		deps := make(map[string]bool, len(node.DependsOn))
		for _, dep := range node.DependsOn {
			deps[dep.ID] = true
		}
		edges[id] = deps
	}
	return edges
}

// ValidateDependencies проверяет граф на ацикличность.
//
// Возвращает valid=false и группы полей, образующих циклы
// (связные компоненты остатка графа после снятия всех волн).
func ValidateDependencies(g *Graph) (bool, [][]string) {
	_, err := g.Waves()
	if err == nil {
		return true, nil
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		return false, nil
	}

	return false, g.cycleGroups(cycleErr.FieldIDs)
}

// cycleGroups разбивает замешанные в цикле поля на связные компоненты.
func (g *Graph) cycleGroups(fieldIDs []string) [][]string {
	inCycle := make(map[string]bool, len(fieldIDs))
	for _, id := range fieldIDs {
		inCycle[id] = true
	}

	visited := make(map[string]bool, len(fieldIDs))
	var groups [][]string

	for _, node := range g.ordered {
		if !inCycle[node.ID] || visited[node.ID] {
			continue
		}

		// Обходим компоненту по рёбрам в обе стороны
		group := []string{}
		stack := []*Node{node}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[n.ID] || !inCycle[n.ID] {
				continue
			}
			visited[n.ID] = true
			group = append(group, n.ID)
			stack = append(stack, n.DependsOn...)
			stack = append(stack, n.Dependents...)
		}

		groups = append(groups, group)
	}

	return groups
}
