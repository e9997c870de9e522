// Fieldmill Runner — выполняет transformation jobs.
//
// Runner:
//   - Получает jobs из RabbitMQ (с polling fallback через БД)
//   - Строит граф зависимостей полей и выполняет его волнами
//   - Сохраняет результаты полей инкрементально
//   - Публикует событие job.completed
//   - По cron-расписанию чистит завершённые jobs старше порога
//
// Runners масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talalbz/fieldmill/internal/mq"
	"github.com/talalbz/fieldmill/internal/repo"
	"github.com/talalbz/fieldmill/internal/runner"
	"github.com/talalbz/fieldmill/internal/telemetry"
	"github.com/talalbz/fieldmill/internal/transform"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting fieldmill-runner")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Создаём репозитории
	jobRepo := repo.NewJobRepo(pool)
	schemaRepo := repo.NewSchemaRepo(pool)

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection

	mqConn, err = mq.NewConnection(mq.URLFromEnv(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		// Создаём топологию
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// LLM transformer
	llm := transform.NewLLMTransformer(transform.LLMConfigFromEnv())
	registry := transform.NewRegistry(llm)

	// Создаём runner
	r := runner.New(runner.Config{
		JobRepo:     jobRepo,
		SchemaRepo:  schemaRepo,
		Publisher:   publisher,
		Conn:        mqConn,
		Transformer: registry,
		Logger:      logger,
	})

	// Запускаем runner
	if err := r.Start(ctx); err != nil {
		logger.Error("failed to start runner", "error", err)
		os.Exit(1)
	}

	// Retention завершённых jobs
	retention, err := runner.NewRetention(runner.RetentionConfigFromEnv(jobRepo, logger))
	if err != nil {
		logger.Error("invalid retention configuration", "error", err)
		os.Exit(1)
	}
	retention.Start(ctx)

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("RUNNER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем runner
	r.Stop()
	logger.Info("fieldmill-runner stopped")
}
