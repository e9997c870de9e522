package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/talalbz/fieldmill/internal/domain"
)

// mockTransformer считает вызовы и отвечает по таблице.
type mockTransformer struct {
	mu      sync.Mutex
	calls   map[string]int
	inputs  map[string]map[string]any
	results map[string]*CallResult
	errs    map[string]error
}

func newMockTransformer() *mockTransformer {
	return &mockTransformer{
		calls:   make(map[string]int),
		inputs:  make(map[string]map[string]any),
		results: make(map[string]*CallResult),
		errs:    make(map[string]error),
	}
}

func (m *mockTransformer) Transform(_ context.Context, f *domain.Field, values map[string]any) (*CallResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[f.ID]++
	m.inputs[f.ID] = values

	if err := m.errs[f.ID]; err != nil {
		return nil, err
	}
	if res := m.results[f.ID]; res != nil {
		return res, nil
	}
	return &CallResult{Success: true, Value: "value-" + f.ID}, nil
}

func (m *mockTransformer) callCount(fieldID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[fieldID]
}

func TestExecutor_SimpleChain(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
		transformField("c", "Tagline", "{Category}"),
	}

	mock := newMockTransformer()
	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		Initial:     map[string]any{"a": "Acme"},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := exec.Results()
	if results["a"] != "Acme" {
		t.Errorf("initial value should pass through, got %v", results["a"])
	}
	if results["b"] != "value-b" {
		t.Errorf("expected value-b, got %v", results["b"])
	}
	if results["c"] != "value-c" {
		t.Errorf("expected value-c, got %v", results["c"])
	}

	states := exec.States()
	if states["b"].Status != domain.FieldStatusSuccess {
		t.Errorf("expected b SUCCESS, got %s", states["b"].Status)
	}
	if states["c"].Status != domain.FieldStatusSuccess {
		t.Errorf("expected c SUCCESS, got %s", states["c"].Status)
	}

	// Обычное извлекаемое поле статуса не имеет
	if _, ok := states["a"]; ok {
		t.Error("plain field should not have a state")
	}
}

func TestExecutor_ColumnValuesKeyedByNameAndID(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Name"),
		transformField("b", "Category", "{Name}"),
	}

	mock := newMockTransformer()
	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		Initial:     map[string]any{"a": "Acme"},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values := mock.inputs["b"]
	if values["a"] != "Acme" {
		t.Errorf("value should be addressable by ID, got %v", values["a"])
	}
	if values["Name"] != "Acme" {
		t.Errorf("value should be addressable by name, got %v", values["Name"])
	}
}

func TestExecutor_ErrorDoesNotFailRun(t *testing.T) {
	fields := []domain.Field{
		transformField("b", "Category", ""),
		transformField("x", "Other", ""),
	}

	mock := newMockTransformer()
	mock.results["b"] = &CallResult{Success: false, Error: "model refused"}

	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
	})

	// Падение одного поля не валит выполнение
	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	states := exec.States()
	if states["b"].Status != domain.FieldStatusError {
		t.Errorf("expected b ERROR, got %s", states["b"].Status)
	}
	if states["b"].Error != "model refused" {
		t.Errorf("expected error message, got %q", states["b"].Error)
	}
	if states["x"].Status != domain.FieldStatusSuccess {
		t.Errorf("sibling field should still succeed, got %s", states["x"].Status)
	}

	// В слот результата пишется строка-описание
	v, ok := exec.Results()["b"].(string)
	if !ok || !strings.HasPrefix(v, "Error: ") {
		t.Errorf("expected error placeholder in results, got %v", exec.Results()["b"])
	}
}

func TestExecutor_TransportErrorSettlesField(t *testing.T) {
	fields := []domain.Field{
		transformField("b", "Category", ""),
	}

	mock := newMockTransformer()
	mock.errs["b"] = errors.New("connection refused")

	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.States()["b"].Status != domain.FieldStatusError {
		t.Errorf("expected ERROR, got %s", exec.States()["b"].Status)
	}
}

func TestExecutor_BlockedPropagation(t *testing.T) {
	// b падает → c блокируется → d блокируется, вызовы для c и d
	// не делаются вовсе
	fields := []domain.Field{
		transformField("b", "Category", ""),
		transformField("c", "Tagline", "{Category}"),
		transformField("d", "Pitch", "{Tagline}"),
	}

	mock := newMockTransformer()
	mock.results["b"] = &CallResult{Success: false, Error: "boom"}

	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	states := exec.States()
	if states["c"].Status != domain.FieldStatusBlocked {
		t.Errorf("expected c BLOCKED, got %s", states["c"].Status)
	}
	if states["d"].Status != domain.FieldStatusBlocked {
		t.Errorf("expected d BLOCKED, got %s", states["d"].Status)
	}

	// Имя блокирующей зависимости в сообщении
	if !strings.Contains(states["c"].Error, "Category") {
		t.Errorf("expected blocking dependency name, got %q", states["c"].Error)
	}

	if mock.callCount("c") != 0 {
		t.Errorf("blocked field c should not be called, got %d calls", mock.callCount("c"))
	}
	if mock.callCount("d") != 0 {
		t.Errorf("blocked field d should not be called, got %d calls", mock.callCount("d"))
	}
}

func TestExecutor_SentinelShortCircuit(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Discount"),
		transformField("b", "Discount Reason", "{Discount}"),
	}

	mock := newMockTransformer()
	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		Initial:     map[string]any{"a": "N/A"},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Вызов не делается, поле получает заглушку зависимости
	if mock.callCount("b") != 0 {
		t.Errorf("sentinel field should not be called, got %d calls", mock.callCount("b"))
	}
	if exec.Results()["b"] != "N/A" {
		t.Errorf("expected sentinel value, got %v", exec.Results()["b"])
	}
	if exec.States()["b"].Status != domain.FieldStatusSuccess {
		t.Errorf("sentinel short-circuit is SUCCESS, got %s", exec.States()["b"].Status)
	}
}

func TestExecutor_SentinelCascade(t *testing.T) {
	// Заглушка каскадирует по цепочке без единого вызова
	fields := []domain.Field{
		plainField("a", "Discount"),
		transformField("b", "Reason", "{Discount}"),
		transformField("c", "Note", "{Reason}"),
	}

	mock := newMockTransformer()
	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		Initial:     map[string]any{"a": "-"},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.callCount("b")+mock.callCount("c") != 0 {
		t.Error("sentinel cascade should make no calls")
	}
	if exec.Results()["c"] != "-" {
		t.Errorf("expected cascaded sentinel, got %v", exec.Results()["c"])
	}
}

func TestExecutor_MixedSentinelStillCalls(t *testing.T) {
	// Хотя бы одна зависимость с реальным значением — вызов делается
	fields := []domain.Field{
		plainField("a", "Discount"),
		plainField("n", "Name"),
		transformField("b", "Reason", "{Discount} {Name}"),
	}

	mock := newMockTransformer()
	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		Initial:     map[string]any{"a": "N/A", "n": "Acme"},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.callCount("b") != 1 {
		t.Errorf("expected 1 call, got %d", mock.callCount("b"))
	}
}

func TestExecutor_CustomSentinels(t *testing.T) {
	fields := []domain.Field{
		plainField("a", "Discount"),
		transformField("b", "Reason", "{Discount}"),
	}

	mock := newMockTransformer()
	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		Initial:     map[string]any{"a": "none"},
		Sentinels:   []string{"none"},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.callCount("b") != 0 {
		t.Error("custom sentinel should short-circuit the call")
	}
	if exec.Results()["b"] != "none" {
		t.Errorf("expected custom sentinel value, got %v", exec.Results()["b"])
	}
}

func TestExecutor_SkippedResultWritesSentinel(t *testing.T) {
	fields := []domain.Field{
		transformField("b", "Category", ""),
	}

	mock := newMockTransformer()
	mock.results["b"] = &CallResult{Success: true, Skipped: true}

	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		Sentinels:   []string{"N/A"},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Results()["b"] != "N/A" {
		t.Errorf("skipped call should settle with sentinel, got %v", exec.Results()["b"])
	}
}

func TestExecutor_NilResult(t *testing.T) {
	fields := []domain.Field{
		transformField("b", "Category", ""),
	}

	exec := NewExecutor(ExecutorConfig{
		Graph: BuildGraph(fields),
		Transformer: transformerFunc(func(context.Context, *domain.Field, map[string]any) (*CallResult, error) {
			return nil, nil
		}),
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.States()["b"].Status != domain.FieldStatusError {
		t.Errorf("nil result should settle as ERROR, got %s", exec.States()["b"].Status)
	}
}

// transformerFunc — адаптер функции к интерфейсу Transformer.
type transformerFunc func(ctx context.Context, f *domain.Field, values map[string]any) (*CallResult, error)

func (fn transformerFunc) Transform(ctx context.Context, f *domain.Field, values map[string]any) (*CallResult, error) {
	return fn(ctx, f, values)
}

func TestExecutor_RunReturnsCycleError(t *testing.T) {
	fields := []domain.Field{
		transformField("a", "First", "{Second}"),
		transformField("b", "Second", "{First}"),
	}

	mock := newMockTransformer()
	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
	})

	err := exec.Run(context.Background())
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected cycle error, got %v", err)
	}

	// Ни одного вызова до обнаружения цикла
	if mock.callCount("a")+mock.callCount("b") != 0 {
		t.Error("no calls should be made when the graph is cyclic")
	}
}

func TestExecutor_OnSettleCallback(t *testing.T) {
	fields := []domain.Field{
		transformField("b", "Category", ""),
		transformField("c", "Tagline", "{Category}"),
	}

	mock := newMockTransformer()
	mock.results["b"] = &CallResult{Success: false, Error: "boom"}

	var mu sync.Mutex
	settled := make(map[string]domain.FieldStatus)

	exec := NewExecutor(ExecutorConfig{
		Graph:       BuildGraph(fields),
		Transformer: mock,
		OnSettle: func(f *domain.Field, status domain.FieldStatus, _ any, _ string) {
			mu.Lock()
			settled[f.ID] = status
			mu.Unlock()
		},
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settled["b"] != domain.FieldStatusError {
		t.Errorf("expected b settled as ERROR, got %s", settled["b"])
	}
	if settled["c"] != domain.FieldStatusBlocked {
		t.Errorf("expected c settled as BLOCKED, got %s", settled["c"])
	}
}

func TestExecutor_WaveParallelism(t *testing.T) {
	// Поля одной волны выполняются конкурентно: оба вызова начинаются
	// до завершения любого из них
	fields := []domain.Field{
		transformField("x", "X", ""),
		transformField("y", "Y", ""),
	}

	var barrier sync.WaitGroup
	barrier.Add(2)

	exec := NewExecutor(ExecutorConfig{
		Graph: BuildGraph(fields),
		Transformer: transformerFunc(func(_ context.Context, f *domain.Field, _ map[string]any) (*CallResult, error) {
			// Каждый вызов ждёт второго: при последовательном
			// выполнении первый завис бы навсегда
			barrier.Done()
			barrier.Wait()
			return &CallResult{Success: true, Value: f.ID}, nil
		}),
	})

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Results()["x"] != "x" || exec.Results()["y"] != "y" {
		t.Errorf("both fields should settle, got %v", exec.Results())
	}
}
