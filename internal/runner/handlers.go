package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talalbz/fieldmill/internal/domain"
	"github.com/talalbz/fieldmill/internal/engine"
	"github.com/talalbz/fieldmill/internal/mq"
	"github.com/talalbz/fieldmill/internal/repo"
	"github.com/talalbz/fieldmill/internal/telemetry"
)

// handleJobPending обрабатывает событие о новом job из очереди jobs.pending.
func (r *Runner) handleJobPending(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.JobPendingPayload](delivery.Message)
	if err != nil {
		r.logger.Error("failed to parse job.pending payload", "error", err)
		return err
	}

	r.logger.Debug("received job.pending event", "job_id", payload.JobID)

	if err := r.processJob(ctx, payload.JobID); err != nil {
		// Ожидаемые ситуации — не возвращаем ошибку (ack)
		if errors.Is(err, ErrJobNotFound) || errors.Is(err, ErrJobNotPending) {
			r.logger.Debug("job not processed", "job_id", payload.JobID, "reason", err)
			return nil
		}
		r.logger.Error("failed to process job", "job_id", payload.JobID, "error", err)
		return err
	}

	return nil
}

// processJob загружает job и схему, строит граф и выполняет все волны.
//
// Структурные ошибки (схема не найдена, невалидные поля, цикл в графе)
// переводят job в FAILED до выполнения первой волны. Падения отдельных
// полей job не валят: он завершается SUCCEEDED с ERROR/BLOCKED
// статусами на конкретных полях.
func (r *Runner) processJob(ctx context.Context, jobID uuid.UUID) error {
	// 1. Загружаем job из БД
	job, err := r.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return fmt.Errorf("get job: %w", err)
	}

	// 2. Проверяем статус
	if job.Status != domain.JobStatusPending {
		return ErrJobNotPending
	}

	// 3. Помечаем как running
	job.MarkRunning()
	if err := r.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job to running: %w", err)
	}

	telemetry.JobsStarted.Inc()

	logger := telemetry.WithJobID(r.logger, job.ID.String())
	logger.Info("job started", "schema_id", job.SchemaID)

	// 4. Загружаем схему
	schema, err := r.schemaRepo.GetByID(ctx, job.SchemaID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return r.failJob(ctx, job, fmt.Sprintf("schema not found: %s", job.SchemaID))
		}
		return fmt.Errorf("get schema: %w", err)
	}

	// 5. Валидируем поля и строим граф
	if err := engine.Validate(schema.Fields); err != nil {
		return r.failJob(ctx, job, fmt.Sprintf("invalid schema: %v", err))
	}

	graph := engine.BuildGraph(schema.Fields)

	// 6. Выполняем волны; каждое завершённое поле сразу уходит в БД
	exec := engine.NewExecutor(engine.ExecutorConfig{
		Graph:       graph,
		Transformer: r.transformer,
		Initial:     job.Inputs,
		Sentinels:   r.sentinels,
		OnSettle:    r.settleFunc(ctx, job.ID),
		Logger:      logger,
	})

	waves, err := graph.Waves()
	if err != nil {
		// Цикл в графе — структурная ошибка, волны не запускаются
		return r.failJob(ctx, job, fmt.Sprintf("dependency graph: %v", err))
	}

	started := time.Now()
	for i, wave := range waves {
		waveStart := time.Now()
		exec.ExecuteWave(ctx, i, wave)
		telemetry.WaveDuration.Observe(time.Since(waveStart).Seconds())
	}

	// 7. Фиксируем итог
	job.MarkSucceeded(exec.Results())
	if err := r.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job to succeeded: %w", err)
	}

	telemetry.JobsCompleted.WithLabelValues(string(job.Status)).Inc()

	logger.Info("job succeeded",
		"schema_id", job.SchemaID,
		"duration", time.Since(started),
	)

	return r.publishCompletion(ctx, job, "")
}

// settleFunc возвращает callback для инкрементального сохранения
// результатов полей по мере их завершения.
func (r *Runner) settleFunc(ctx context.Context, jobID uuid.UUID) engine.SettleFunc {
	return func(field *domain.Field, status domain.FieldStatus, value any, errMsg string) {
		telemetry.FieldsSettled.WithLabelValues(string(status)).Inc()

		fr := &domain.FieldResult{
			JobID:     jobID,
			FieldID:   field.ID,
			Name:      field.Name,
			Status:    status,
			Value:     value,
			Error:     errMsg,
			UpdatedAt: time.Now(),
		}

		if err := r.jobRepo.UpsertFieldResult(ctx, fr); err != nil {
			// Сохранение поля — best effort: итоговые Results job
			// всё равно запишутся при завершении
			r.logger.Warn("failed to persist field result",
				"job_id", jobID,
				"field_id", field.ID,
				"error", err,
			)
		}
	}
}

// failJob переводит job в FAILED со структурной ошибкой.
func (r *Runner) failJob(ctx context.Context, job *domain.Job, msg string) error {
	job.MarkFailed(msg)
	if err := r.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job to failed: %w", err)
	}

	telemetry.JobsCompleted.WithLabelValues(string(job.Status)).Inc()

	r.logger.Warn("job failed",
		"job_id", job.ID,
		"schema_id", job.SchemaID,
		"error", msg,
	)

	return r.publishCompletion(ctx, job, msg)
}

// publishCompletion публикует событие job.completed.
func (r *Runner) publishCompletion(ctx context.Context, job *domain.Job, errMsg string) error {
	if r.publisher == nil {
		r.logger.Debug("publisher not available, skipping job.completed publish",
			"job_id", job.ID,
		)
		return nil
	}

	payload := mq.JobCompletedPayload{
		JobID:    job.ID,
		SchemaID: job.SchemaID,
		Status:   string(job.Status),
		Error:    errMsg,
	}

	if err := r.publisher.PublishJobCompleted(ctx, payload); err != nil {
		r.logger.Warn("failed to publish job.completed",
			"job_id", job.ID,
			"error", err,
		)
		// Не возвращаем ошибку — job обновлён в БД, потребители
		// подхватят статус через API
	}

	return nil
}
