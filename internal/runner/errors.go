package runner

import "errors"

// Ошибки Runner.
var (
	// ErrJobNotFound — job не найден в БД.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotPending — job не в статусе PENDING.
	// Обычная ситуация при дублирующей доставке события.
	ErrJobNotPending = errors.New("job is not pending")
)
