package engine

import (
	"fmt"

	"github.com/talalbz/fieldmill/internal/domain"
)

// LeafSummaryKey — ключ синтетической записи сводки, в которую
// схлопываются все примитивные summary-поля.
const LeafSummaryKey = "leaf_summary"

// BuildSummaryValues строит сводку результатов job.
//
// Поля с DisplayInSummary делятся на примитивные и объектные:
//   - Все примитивные схлопываются в одну запись LeafSummaryKey
//     (fieldID → значение) — UI рендерит её плоской панелью
//     ключ/значение без церемоний по каждому полю.
//   - Каждое объектное поле остаётся отдельной записью под своим ID
//     с полным резолвленным под-объектом: ему нужен вложенный рендеринг.
//
// Поля без значения в results в сводку не попадают.
func BuildSummaryValues(fields []*domain.Field, results map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any)

	for _, f := range fields {
		if !f.DisplayInSummary {
			continue
		}

		value, ok := results[f.ID]
		if !ok {
			continue
		}

		if f.Type == domain.FieldTypeObject {
			out[f.ID] = objectValue(value)
			continue
		}

		leaf := out[LeafSummaryKey]
		if leaf == nil {
			leaf = make(map[string]any)
			out[LeafSummaryKey] = leaf
		}
		leaf[f.ID] = value
	}

	return out
}

// objectValue приводит значение объектного поля к map.
// Не-map значение (например, строка-ошибка) оборачивается,
// чтобы запись сводки всегда была структурной.
func objectValue(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"value": v}
}

// FindSummaryDependencyWarnings находит подозрительные конфигурации
// сводки: summary-поле, от которого напрямую зависит другое
// summary-поле.
//
// Это линт дизайна схемы, а не ошибка выполнения: такая пара выглядит
// в сводке «циклично» и сбивает автора схемы с толку. Выполнение
// предупреждения не блокируют.
func FindSummaryDependencyWarnings(fields []*domain.Field, g *Graph) []string {
	inSummary := make(map[string]*domain.Field)
	for _, f := range fields {
		if f.DisplayInSummary {
			inSummary[f.ID] = f
		}
	}

	var warnings []string

	for _, f := range fields {
		if !f.DisplayInSummary {
			continue
		}

		for _, depID := range g.Dependents(f.ID) {
			dependent, ok := inSummary[depID]
			if !ok {
				continue
			}
			warnings = append(warnings, fmt.Sprintf(
				"summary field %q depends on summary field %q: both will appear in the summary, which may look circular",
				dependent.Name, f.Name,
			))
		}
	}

	return warnings
}
