// Package engine содержит движок трансформаций полей.
//
// Включает:
//   - validate.go — структурная валидация дерева полей схемы
//   - refs.go     — извлечение {FieldName} ссылок из промптов
//   - graph.go    — построение графа зависимостей полей
//   - waves.go    — разбиение графа на волны (алгоритм Кана)
//   - executor.go — конкурентное выполнение волн с блокировкой зависимых
//   - summary.go  — сводка результатов по summary-полям
//
// Engine отвечает за безопасный порядок выполнения трансформаций:
// поле выполняется строго после всех своих зависимостей, независимые
// поля одной волны выполняются конкурентно, падение поля блокирует
// его зависимые поля в следующих волнах, не трогая соседей.
package engine
