package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talalbz/fieldmill/internal/domain"
)

// DefaultSentinels — значения-заглушки "не применимо" по умолчанию.
//
// Если все зависимости поля равны заглушке, внешний вызов не делается —
// поле само получает заглушку. Это обрывает каскад бессмысленных
// AI-вызовов по цепочке "не применимо". Список содержит локализованные
// варианты, встречающиеся в реальных документах; набор конфигурируемый.
var DefaultSentinels = []string{"-", "—", "N/A", "غير متوفر"}

// CallResult — результат внешнего вызова трансформации.
type CallResult struct {
	// Success — true, если вызов завершился успешно.
	Success bool

	// Value — полученное значение поля.
	Value any

	// Error — сообщение об ошибке при Success=false.
	Error string

	// Skipped — true, если вызов пропущен (все зависимости "не применимо").
	// Движок записывает заглушку вместо Value.
	Skipped bool
}

// Transformer — внешняя граница движка: вызов трансформации поля.
//
// Движку безразлично, как вызов реализован (HTTP к LLM-провайдеру,
// локальное вычисление). Требования:
//   - Обычные ошибки не возвращаются через error — вызов резолвится
//     с Success=false и текстом в Error. Транспортные ошибки ловятся
//     на границе реализации.
//   - error из Transform трактуется движком как падение одного поля,
//     не влияющее на соседей по волне.
type Transformer interface {
	Transform(ctx context.Context, field *domain.Field, columnValues map[string]any) (*CallResult, error)
}

// FieldState — состояние поля в рамках выполнения.
type FieldState struct {
	// Status — статус поля.
	Status domain.FieldStatus

	// Error — сообщение об ошибке при ERROR/BLOCKED.
	Error string
}

// SettleFunc — callback о завершении поля (для инкрементального
// сохранения и обновления UI). Вызывается после записи состояния.
type SettleFunc func(field *domain.Field, status domain.FieldStatus, value any, errMsg string)

// Executor выполняет волны трансформаций одного job.
//
// Executor единолично владеет результатами и статусами полей своего
// job: разные jobs выполняются на независимых Executor'ах и не требуют
// координации. Мутекс защищает карты от конкурентных горутин
// внутри одной волны.
type Executor struct {
	graph       *Graph
	transformer Transformer
	onSettle    SettleFunc
	logger      *slog.Logger

	sentinels map[string]bool
	sentinel  string // каноническая заглушка для Skipped

	mu      sync.Mutex
	results map[string]any
	states  map[string]FieldState
}

// ExecutorConfig — конфигурация Executor.
type ExecutorConfig struct {
	// Graph — граф зависимостей полей схемы.
	Graph *Graph

	// Transformer — реализация внешнего вызова трансформации.
	Transformer Transformer

	// Initial — уже извлечённые значения полей (fieldID → значение).
	// Стартовое наполнение результатов перед первой волной.
	Initial map[string]any

	// Sentinels — значения-заглушки (default: DefaultSentinels).
	Sentinels []string

	// OnSettle — callback о завершении поля (опционально).
	OnSettle SettleFunc

	// Logger — логгер (default: slog.Default()).
	Logger *slog.Logger
}

// NewExecutor создаёт Executor для одного job.
func NewExecutor(cfg ExecutorConfig) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sentinels := cfg.Sentinels
	if len(sentinels) == 0 {
		sentinels = DefaultSentinels
	}

	sentinelSet := make(map[string]bool, len(sentinels))
	for _, s := range sentinels {
		sentinelSet[s] = true
	}

	results := make(map[string]any, len(cfg.Initial))
	for k, v := range cfg.Initial {
		results[k] = v
	}

	// PENDING для всех волновых трансформаций; обычные извлекаемые
	// поля считаются уже резолвленным входом
	states := make(map[string]FieldState)
	for id, node := range cfg.Graph.Nodes {
		if node.Field.IsWaveTransformation() {
			states[id] = FieldState{Status: domain.FieldStatusPending}
		}
	}

	return &Executor{
		graph:       cfg.Graph,
		transformer: cfg.Transformer,
		onSettle:    cfg.OnSettle,
		logger:      logger,
		sentinels:   sentinelSet,
		sentinel:    sentinels[0],
		results:     results,
		states:      states,
	}
}

// Run строит волны и выполняет их по порядку.
//
// Цикл в графе возвращается ошибкой до выполнения первой волны.
// После старта волн ошибок нет: падения отдельных полей записываются
// в их статусы, job в целом считается завершённым когда все волны
// отработали.
func (e *Executor) Run(ctx context.Context) error {
	waves, err := e.graph.Waves()
	if err != nil {
		return err
	}

	for i, wave := range waves {
		e.ExecuteWave(ctx, i, wave)
	}

	return nil
}

// ExecuteWave выполняет одну волну трансформаций.
//
// Волна n+1 не начинается, пока волна n не завершилась полностью —
// вызывающий обязан вызывать ExecuteWave в порядке возрастания индекса
// и дожидаться возврата.
//
// Поля волны без волновой трансформации пропускаются: они участвовали
// только в форме графа и уже резолвлены. Для остальных:
//   - Если зависимость в ERROR/BLOCKED — поле помечается BLOCKED
//     с именем блокирующей зависимости; внешний вызов не делается.
//   - Если все значения зависимостей равны заглушке — поле получает
//     заглушку без вызова.
//   - Иначе поле диспатчится конкурентно с остальными полями волны.
//
// Падение одного поля не отменяет и не портит соседние вызовы волны.
func (e *Executor) ExecuteWave(ctx context.Context, index int, wave Wave) {
	type dispatch struct {
		field  *domain.Field
		values map[string]any
	}

	var pending []dispatch

	for _, f := range wave.Fields {
		if !f.IsWaveTransformation() {
			continue
		}

		node := e.graph.Node(f.ID)

		// Проверка блокировки по зависимостям
		if dep := e.failedDependency(node); dep != nil {
			msg := fmt.Sprintf("blocked by failed dependency: %s", dep.Field.Name)
			e.settleBlocked(f, msg)
			continue
		}

		values := e.columnValues(node)

		// Короткое замыкание: все зависимости "не применимо"
		if sentinel, ok := e.allSentinel(node); ok {
			e.logger.Debug("field short-circuited by sentinel values",
				"field_id", f.ID,
				"wave", index,
			)
			e.settleSuccess(f, sentinel)
			continue
		}

		pending = append(pending, dispatch{field: f, values: values})
	}

	if len(pending) == 0 {
		return
	}

	e.logger.Debug("executing wave",
		"wave", index,
		"fields", len(pending),
	)

	// Запускаем все вызовы волны, ждём завершения всех
	var wg sync.WaitGroup
	for _, d := range pending {
		wg.Add(1)
		go func(d dispatch) {
			defer wg.Done()
			e.execute(ctx, d.field, d.values)
		}(d)
	}
	wg.Wait()
}

// execute выполняет внешний вызов для одного поля и записывает исход.
func (e *Executor) execute(ctx context.Context, f *domain.Field, values map[string]any) {
	res, err := e.transformer.Transform(ctx, f, values)

	switch {
	case err != nil:
		// Инфраструктурная ошибка — падение одного поля
		e.settleError(f, err.Error())

	case res == nil:
		e.settleError(f, "transformation returned no result")

	case !res.Success:
		e.settleError(f, res.Error)

	case res.Skipped:
		e.settleSuccess(f, e.sentinel)

	default:
		e.settleSuccess(f, res.Value)
	}
}

// failedDependency возвращает первую зависимость в ERROR/BLOCKED.
func (e *Executor) failedDependency(node *Node) *Node {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, dep := range node.DependsOn {
		if e.states[dep.ID].Status.IsFailure() {
			return dep
		}
	}
	return nil
}

// columnValues собирает значения зависимостей поля.
// Каждое значение доступно и по имени зависимости, и по её ID —
// чтобы потребители могли адресовать любым способом.
func (e *Executor) columnValues(node *Node) map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()

	values := make(map[string]any, len(node.DependsOn)*2)
	for _, dep := range node.DependsOn {
		v := e.results[dep.ID]
		values[dep.ID] = v
		values[dep.Field.Name] = v
	}
	return values
}

// allSentinel проверяет, что все значения зависимостей — заглушки.
// Возвращает заглушку первой зависимости для записи в само поле.
func (e *Executor) allSentinel(node *Node) (string, bool) {
	if len(node.DependsOn) == 0 {
		return "", false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	first := ""
	for i, dep := range node.DependsOn {
		s, ok := e.results[dep.ID].(string)
		if !ok || !e.sentinels[s] {
			return "", false
		}
		if i == 0 {
			first = s
		}
	}
	return first, true
}

// settleSuccess записывает успешное значение поля.
func (e *Executor) settleSuccess(f *domain.Field, value any) {
	e.mu.Lock()
	e.results[f.ID] = value
	e.states[f.ID] = FieldState{Status: domain.FieldStatusSuccess}
	e.mu.Unlock()

	if e.onSettle != nil {
		e.onSettle(f, domain.FieldStatusSuccess, value, "")
	}
}

// settleError записывает падение вызова трансформации.
// В слот результата пишется строка с описанием, чтобы потребители
// всегда находили значение по ID поля.
func (e *Executor) settleError(f *domain.Field, msg string) {
	placeholder := "Error: " + msg

	e.mu.Lock()
	e.results[f.ID] = placeholder
	e.states[f.ID] = FieldState{Status: domain.FieldStatusError, Error: msg}
	e.mu.Unlock()

	e.logger.Warn("field transformation failed",
		"field_id", f.ID,
		"field", f.Name,
		"error", msg,
	)

	if e.onSettle != nil {
		e.onSettle(f, domain.FieldStatusError, placeholder, msg)
	}
}

// settleBlocked помечает поле заблокированным без внешнего вызова.
func (e *Executor) settleBlocked(f *domain.Field, msg string) {
	placeholder := "Error: " + msg

	e.mu.Lock()
	e.results[f.ID] = placeholder
	e.states[f.ID] = FieldState{Status: domain.FieldStatusBlocked, Error: msg}
	e.mu.Unlock()

	e.logger.Warn("field blocked",
		"field_id", f.ID,
		"field", f.Name,
		"reason", msg,
	)

	if e.onSettle != nil {
		e.onSettle(f, domain.FieldStatusBlocked, placeholder, msg)
	}
}

// Results возвращает копию итоговых значений (fieldID → значение).
func (e *Executor) Results() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]any, len(e.results))
	for k, v := range e.results {
		out[k] = v
	}
	return out
}

// States возвращает копию состояний волновых трансформаций.
// Обычные извлекаемые поля здесь не представлены — они резолвлены
// входом и статуса не меняют.
func (e *Executor) States() map[string]FieldState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]FieldState, len(e.states))
	for k, v := range e.states {
		out[k] = v
	}
	return out
}
