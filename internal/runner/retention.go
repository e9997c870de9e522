package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/talalbz/fieldmill/internal/repo"
)

// cronParser — парсер cron-выражений (стандартные 5 полей).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Retention defaults.
const (
	defaultRetentionCron = "0 3 * * *" // ежедневно в 03:00
	defaultRetentionDays = 30
)

// Retention периодически удаляет завершённые jobs старше порога.
//
// Jobs накапливаются быстро (каждый обработанный документ — job),
// поэтому без retention таблицы jobs и field_results растут
// неограниченно.
type Retention struct {
	jobRepo  *repo.JobRepo
	schedule cron.Schedule
	maxAge   time.Duration
	logger   *slog.Logger
}

// RetentionConfig — конфигурация Retention.
type RetentionConfig struct {
	// JobRepo — репозиторий jobs.
	JobRepo *repo.JobRepo

	// CronExpr — расписание запуска (default: "0 3 * * *").
	CronExpr string

	// MaxAge — возраст завершённого job, после которого он удаляется
	// (default: 30 суток).
	MaxAge time.Duration

	// Logger
	Logger *slog.Logger
}

// NewRetention создаёт Retention.
func NewRetention(cfg RetentionConfig) (*Retention, error) {
	expr := cfg.CronExpr
	if expr == "" {
		expr = defaultRetentionCron
	}

	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse retention cron %q: %w", expr, err)
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultRetentionDays * 24 * time.Hour
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Retention{
		jobRepo:  cfg.JobRepo,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}, nil
}

// RetentionConfigFromEnv читает конфигурацию retention из окружения.
//
// Переменные:
//   - RETENTION_CRON — расписание (default: "0 3 * * *")
//   - RETENTION_DAYS — возраст в сутках (default: 30)
func RetentionConfigFromEnv(jobRepo *repo.JobRepo, logger *slog.Logger) RetentionConfig {
	cfg := RetentionConfig{
		JobRepo:  jobRepo,
		CronExpr: os.Getenv("RETENTION_CRON"),
		Logger:   logger,
	}

	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.MaxAge = time.Duration(days) * 24 * time.Hour
		}
	}

	return cfg
}

// Start запускает цикл retention в отдельной горутине.
// Останавливается при отмене контекста.
func (rt *Retention) Start(ctx context.Context) {
	go rt.loop(ctx)
}

// loop ждёт следующего срабатывания по расписанию и выполняет sweep.
func (rt *Retention) loop(ctx context.Context) {
	for {
		next := rt.schedule.Next(time.Now())
		rt.logger.Debug("retention sweep scheduled", "next", next)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		if err := rt.Sweep(ctx); err != nil {
			rt.logger.Error("retention sweep failed", "error", err)
		}
	}
}

// Sweep удаляет завершённые jobs старше порога.
func (rt *Retention) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-rt.maxAge)

	deleted, err := rt.jobRepo.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete finished jobs: %w", err)
	}

	if deleted > 0 {
		rt.logger.Info("retention sweep completed",
			"deleted", deleted,
			"cutoff", cutoff,
		)
	}
	return nil
}
