package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/talalbz/fieldmill/internal/domain"
	"github.com/talalbz/fieldmill/internal/engine"
)

// Ошибки трансформаций.
var (
	// ErrUnknownSource — нет transformer'а для данного источника.
	ErrUnknownSource = errors.New("unknown transformation source")

	// ErrEmptyPrompt — у трансформации пустой шаблон промпта.
	ErrEmptyPrompt = errors.New("transformation has empty prompt")

	// ErrLLMRequest — запрос к LLM-шлюзу не удался.
	ErrLLMRequest = errors.New("llm request failed")
)

// Registry — реестр transformer'ов по источнику трансформации.
//
// Registry сам реализует engine.Transformer и диспатчит вызов
// по TransformationSource поля.
type Registry struct {
	transformers map[domain.TransformationSource]engine.Transformer
}

// NewRegistry создаёт реестр с зарегистрированными transformer'ами
// по умолчанию: column → LLM-шлюз.
func NewRegistry(llm *LLMTransformer) *Registry {
	r := &Registry{
		transformers: make(map[domain.TransformationSource]engine.Transformer),
	}
	r.Register(domain.SourceColumn, llm)
	return r
}

// Register добавляет transformer для источника.
func (r *Registry) Register(source domain.TransformationSource, t engine.Transformer) {
	r.transformers[source] = t
}

// Get возвращает transformer для источника.
func (r *Registry) Get(source domain.TransformationSource) (engine.Transformer, error) {
	t, ok := r.transformers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	return t, nil
}

// Transform реализует engine.Transformer.
func (r *Registry) Transform(ctx context.Context, field *domain.Field, columnValues map[string]any) (*engine.CallResult, error) {
	t, err := r.Get(field.TransformationSource)
	if err != nil {
		return nil, err
	}
	return t.Transform(ctx, field, columnValues)
}
