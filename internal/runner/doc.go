// Package runner выполняет transformation jobs.
//
// # Обзор
//
// Runner — stateless компонент системы Fieldmill, который выполняет
// jobs, созданные через API. Runner отвечает за:
//
//   - Получение jobs из очереди RabbitMQ (event-driven)
//   - Периодическую проверку pending jobs в БД (polling fallback)
//   - Построение графа зависимостей полей схемы
//   - Выполнение волн трансформаций через engine.Executor
//   - Инкрементальное сохранение результатов полей
//   - Публикацию события job.completed
//
// Runners масштабируются горизонтально — несколько экземпляров
// потребляют из одной очереди jobs.pending.
//
// # Обработка job
//
//  1. Получение job (из очереди или polling)
//  2. Загрузка job из БД, проверка статуса PENDING
//  3. Перевод в RUNNING
//  4. Загрузка схемы, валидация полей, построение графа
//  5. Выполнение волн; каждое завершённое поле сразу в БД
//  6. MarkSucceeded с итоговыми результатами, publish job.completed
//
// Структурные ошибки (схема не найдена, цикл в графе) переводят job
// в FAILED до первой волны. Падения отдельных полей job не валят.
//
// # Retention
//
// Retention по cron-расписанию удаляет завершённые jobs старше
// настроенного порога, сдерживая рост таблиц jobs и field_results.
package runner
