// Package api реализует HTTP API сервиса Fieldmill.
//
// Ресурсы:
//   - /api/v1/schemas — CRUD схем полей, превью графа зависимостей
//   - /api/v1/jobs — создание и отслеживание transformation jobs,
//     результаты полей и summary-представление
//
// Входящие документы схем проверяются по JSON Schema до декодирования.
// Все ответы — JSON-конверты DataResponse / ListResponse / ErrorResponse.
package api
