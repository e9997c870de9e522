// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog, контекстные хелперы
//     WithJobID/WithFieldID/WithSchemaID
//   - metrics.go — Prometheus метрики движка (jobs, волны, поля)
//
// API и runner используют единый формат логирования и экспортируют
// метрики на /metrics endpoint своего health-порта.
package telemetry
