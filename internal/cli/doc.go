// Package cli реализует инструмент командной строки Fieldmill.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Fieldmill API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления схемами полей и jobs.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Fieldmill API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	schemas, err := client.ListSchemas()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: fieldmill schema list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - schema: list, create, show, update, delete, graph
//   - job: list, start, show, cancel, results, summary
//
// Каждая группа создаётся через фабричную функцию (NewSchemaCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
