package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/talalbz/fieldmill/internal/engine"
	"github.com/talalbz/fieldmill/internal/mq"
	"github.com/talalbz/fieldmill/internal/repo"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 20
	defaultPrefetch     = 5
)

// Runner выполняет transformation jobs.
//
// Runner — stateless компонент системы, который:
//   - Получает события о новых jobs из очереди RabbitMQ (event-driven)
//   - Периодически проверяет pending jobs в БД (polling fallback)
//   - Строит граф зависимостей полей и выполняет его волнами
//   - Инкрементально сохраняет результаты полей по мере завершения
//   - Публикует событие job.completed
//
// Runners масштабируются горизонтально — несколько экземпляров
// могут потреблять из одной очереди.
type Runner struct {
	// Repositories
	jobRepo    *repo.JobRepo
	schemaRepo *repo.SchemaRepo

	// MQ
	publisher *mq.Publisher
	conn      *mq.Connection

	// Transformer — внешняя граница движка (LLM и пр.)
	transformer engine.Transformer

	// Consumer
	consumer *mq.Consumer

	// Configuration
	pollInterval time.Duration
	batchSize    int
	sentinels    []string

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Runner.
type Config struct {
	// Repositories
	JobRepo    *repo.JobRepo
	SchemaRepo *repo.SchemaRepo

	// MQ (опционально; без них Runner работает в polling-only режиме)
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// Transformer — реализация внешних вызовов трансформации.
	Transformer engine.Transformer

	// Sentinels — значения-заглушки (default: engine.DefaultSentinels).
	Sentinels []string

	// Polling configuration
	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // количество jobs за один poll (default: 20)

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Runner.
func New(cfg Config) *Runner {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		jobRepo:      cfg.JobRepo,
		schemaRepo:   cfg.SchemaRepo,
		publisher:    cfg.Publisher,
		conn:         cfg.Conn,
		transformer:  cfg.Transformer,
		sentinels:    cfg.Sentinels,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start запускает Runner.
//
// Запускает:
//   - Consumer для jobs.pending (если есть MQ-соединение)
//   - Polling горутину для fallback
func (r *Runner) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel

	r.logger.Info("starting runner",
		"poll_interval", r.pollInterval,
		"batch_size", r.batchSize,
	)

	if r.conn != nil {
		r.consumer = mq.NewConsumer(r.conn, mq.ConsumerConfig{
			Queue:    mq.QueueJobsPending,
			Handler:  r.handleJobPending,
			Prefetch: defaultPrefetch,
			Logger:   r.logger,
		})
		r.consumer.Start(ctx)
	}

	// Запускаем polling
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.pollLoop(ctx)
	}()

	r.logger.Info("runner started")
	return nil
}

// Stop останавливает Runner.
func (r *Runner) Stop() {
	r.stoppedMu.Lock()
	r.stopped = true
	r.stoppedMu.Unlock()

	r.logger.Info("stopping runner...")

	if r.cancelFunc != nil {
		r.cancelFunc()
	}

	if r.consumer != nil {
		r.consumer.Stop()
	}

	// Ждём завершения горутин
	r.wg.Wait()

	r.logger.Info("runner stopped")
}

// IsStopped проверяет, остановлен ли Runner.
func (r *Runner) IsStopped() bool {
	r.stoppedMu.RLock()
	defer r.stoppedMu.RUnlock()
	return r.stopped
}

// pollLoop — цикл polling для fallback.
func (r *Runner) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу при старте (подхватываем jobs созданные пока были выключены)
	r.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (r *Runner) poll(ctx context.Context) {
	jobs, err := r.jobRepo.ListPending(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	r.logger.Debug("poll found pending jobs", "count", len(jobs))

	for i := range jobs {
		job := &jobs[i]

		if err := r.processJob(ctx, job.ID); err != nil {
			r.logger.Error("failed to process job from poll",
				"job_id", job.ID,
				"error", err,
			)
		}
	}
}
