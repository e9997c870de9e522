package api

import (
	"log/slog"

	"github.com/talalbz/fieldmill/internal/mq"
	"github.com/talalbz/fieldmill/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	schemaRepo *repo.SchemaRepo
	jobRepo    *repo.JobRepo
	publisher  *mq.Publisher
	logger     *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	SchemaRepo *repo.SchemaRepo
	JobRepo    *repo.JobRepo
	Publisher  *mq.Publisher
	Logger     *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		schemaRepo: cfg.SchemaRepo,
		jobRepo:    cfg.JobRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
	}
}
