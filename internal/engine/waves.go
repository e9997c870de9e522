package engine

import (
	"github.com/talalbz/fieldmill/internal/domain"
)

// Wave — партия полей одной глубины зависимостей.
//
// Внутри волны нет ни одного ребра зависимости, поэтому поля волны
// можно выполнять параллельно. Поле всегда попадает в волну строго
// позже волн всех своих зависимостей.
type Wave struct {
	// Fields — поля волны в порядке исходной схемы.
	// Порядок нужен только для детерминированности логов:
	// семантического упорядочивания внутри волны нет.
	Fields []*domain.Field
}

// Waves выполняет топологическую сортировку графа по уровням
// (алгоритм Кана).
//
// Волна 0 — все поля с нулевой входящей степенью: обычные извлекаемые
// поля и трансформации без зависимостей. Затем поля волны снимаются
// с графа, входящие степени зависимых уменьшаются, и процесс
// повторяется.
//
// Если после снятия всех доступных волн остались поля с положительной
// входящей степенью — в графе цикл. Возвращается *CycleError с ID
// замешанных полей и ни одной волны: проверка обязана произойти
// до выполнения.
func (g *Graph) Waves() ([]Wave, error) {
	// Копируем inDegree, чтобы не модифицировать граф
	inDegree := make(map[string]int, len(g.Nodes))
	for id, node := range g.Nodes {
		inDegree[id] = node.InDegree
	}

	// Текущая волна — узлы с inDegree = 0, в порядке схемы
	current := make([]*Node, 0)
	for _, node := range g.ordered {
		if inDegree[node.ID] == 0 {
			current = append(current, node)
		}
	}

	waves := make([]Wave, 0)
	processed := 0

	for len(current) > 0 {
		wave := Wave{Fields: make([]*domain.Field, 0, len(current))}
		next := make([]*Node, 0)

		for _, node := range current {
			wave.Fields = append(wave.Fields, node.Field)
			processed++

			// Уменьшаем inDegree у зависимых узлов
			for _, dependent := range node.Dependents {
				inDegree[dependent.ID]--
				if inDegree[dependent.ID] == 0 {
					next = append(next, dependent)
				}
			}
		}

		waves = append(waves, wave)
		current = sortBySchemaOrder(g, next)
	}

	// Если не все узлы обработаны — есть цикл
	if processed != len(g.Nodes) {
		remaining := make([]string, 0, len(g.Nodes)-processed)
		for _, node := range g.ordered {
			if inDegree[node.ID] > 0 {
				remaining = append(remaining, node.ID)
			}
		}
		return nil, &CycleError{FieldIDs: remaining}
	}

	return waves, nil
}

// sortBySchemaOrder возвращает узлы в порядке исходной схемы.
func sortBySchemaOrder(g *Graph, nodes []*Node) []*Node {
	if len(nodes) < 2 {
		return nodes
	}

	include := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		include[n.ID] = true
	}

	out := make([]*Node, 0, len(nodes))
	for _, n := range g.ordered {
		if include[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// WaveIndex возвращает индекс волны для каждого поля (fieldID → индекс).
// Возвращает ошибку цикла, если волны построить нельзя.
func (g *Graph) WaveIndex() (map[string]int, error) {
	waves, err := g.Waves()
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(g.Nodes))
	for i, wave := range waves {
		for _, f := range wave.Fields {
			idx[f.ID] = i
		}
	}
	return idx, nil
}
