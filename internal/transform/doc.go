// Package transform содержит реализации transformer'ов — внешних
// вызовов, вычисляющих значения полей-трансформаций.
//
// # Обзор
//
// Движок (engine) решает КОГДА выполнять поле и с какими входами;
// transformer решает КАК получить значение. Каждый transformer:
//   - Получает поле и значения его зависимостей (columnValues)
//   - Рендерит шаблон промпта и выполняет внешний вызов
//   - Возвращает CallResult — значение либо логическую ошибку
//
// # Интерфейс Transformer
//
// Все transformer'ы реализуют engine.Transformer:
//
//	type Transformer interface {
//	    Transform(ctx context.Context, field *domain.Field,
//	        columnValues map[string]any) (*CallResult, error)
//	}
//
// Граница ошибок: транспортные проблемы (сеть, не-2xx статус, ответ
// шлюза с error) конвертируются в CallResult{Success: false} ЗДЕСЬ.
// Error из Transform означает ошибку инфраструктуры, а не поля —
// движок в обоих случаях переводит поле в ERROR, но логическая ошибка
// несёт читаемый текст для потребителя.
//
// # Registry
//
// Registry диспатчит вызов по TransformationSource поля:
//
//	llm := transform.NewLLMTransformer(transform.LLMConfigFromEnv())
//	registry := transform.NewRegistry(llm)  // column → LLM
//	registry.Register(domain.SourceDocument, custom)
//
// Registry сам реализует engine.Transformer, поэтому передаётся
// в ExecutorConfig.Transformer как есть.
//
// # LLMTransformer (llm.go)
//
// Вызывает chat/completions-совместимый LLM-шлюз (OpenRouter и
// аналоги). Шаблон промпта поля рендерится подстановкой значений
// зависимостей вместо {FieldName} токенов:
//
//	"Classify the company {Company Name}"
//	→ "Classify the company Acme Corp"
//
// Конфигурация через окружение: LLM_URL, LLM_API_KEY, LLM_MODEL,
// LLM_TIMEOUT_SEC.
//
// # Файлы пакета
//
//   - transform.go — Registry, ошибки
//   - llm.go       — LLMTransformer
package transform
