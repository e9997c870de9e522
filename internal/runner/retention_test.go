package runner

import (
	"testing"
	"time"
)

func TestNewRetention_Defaults(t *testing.T) {
	rt, err := NewRetention(RetentionConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rt.maxAge != defaultRetentionDays*24*time.Hour {
		t.Errorf("expected default max age, got %v", rt.maxAge)
	}
	if rt.schedule == nil {
		t.Error("schedule should be parsed")
	}

	// Дефолтное расписание — ежедневно в 03:00
	next := rt.schedule.Next(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	want := time.Date(2026, 1, 16, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected next run %v, got %v", want, next)
	}
}

func TestNewRetention_InvalidCron(t *testing.T) {
	_, err := NewRetention(RetentionConfig{CronExpr: "not a cron"})
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestRetentionConfigFromEnv(t *testing.T) {
	t.Setenv("RETENTION_CRON", "30 2 * * *")
	t.Setenv("RETENTION_DAYS", "7")

	cfg := RetentionConfigFromEnv(nil, nil)

	if cfg.CronExpr != "30 2 * * *" {
		t.Errorf("unexpected cron expr: %q", cfg.CronExpr)
	}
	if cfg.MaxAge != 7*24*time.Hour {
		t.Errorf("expected 7 days, got %v", cfg.MaxAge)
	}
}

func TestRetentionConfigFromEnv_BadDays(t *testing.T) {
	t.Setenv("RETENTION_DAYS", "zero")

	cfg := RetentionConfigFromEnv(nil, nil)

	// Невалидное значение игнорируется, сработает дефолт в NewRetention
	if cfg.MaxAge != 0 {
		t.Errorf("expected zero max age, got %v", cfg.MaxAge)
	}
}
