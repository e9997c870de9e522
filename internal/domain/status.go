package domain

// JobStatus — статус выполнения extraction job.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//	          (или) → CANCELLED (из PENDING или RUNNING)
//
// Job считается SUCCEEDED, когда все волны завершились — даже если
// отдельные поля закончились с ERROR или BLOCKED. FAILED означает
// структурную ошибку (невалидная схема, цикл в зависимостях),
// при которой выполнение волн не начиналось.
type JobStatus string

const (
	// JobStatusPending — job создан, но ещё не начал выполняться.
	JobStatusPending JobStatus = "PENDING"

	// JobStatusRunning — job в процессе выполнения волн.
	JobStatusRunning JobStatus = "RUNNING"

	// JobStatusSucceeded — все волны завершились.
	JobStatusSucceeded JobStatus = "SUCCEEDED"

	// JobStatusFailed — структурная ошибка до выполнения волн.
	JobStatusFailed JobStatus = "FAILED"

	// JobStatusCancelled — job отменён пользователем.
	JobStatusCancelled JobStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// FieldStatus — статус отдельного поля в рамках job.
//
// Жизненный цикл:
//
//	PENDING → SUCCESS
//	        ↘ ERROR   (вызов трансформации завершился ошибкой)
//	        ↘ BLOCKED (зависимость в ERROR или BLOCKED, вызов не делался)
//
// Статус терминален: после перехода из PENDING не меняется.
type FieldStatus string

const (
	// FieldStatusPending — поле ожидает свою волну.
	FieldStatusPending FieldStatus = "PENDING"

	// FieldStatusSuccess — значение поля получено.
	FieldStatusSuccess FieldStatus = "SUCCESS"

	// FieldStatusError — вызов трансформации поля завершился ошибкой.
	FieldStatusError FieldStatus = "ERROR"

	// FieldStatusBlocked — поле не выполнялось из-за упавшей зависимости.
	FieldStatusBlocked FieldStatus = "BLOCKED"
)

// IsTerminal возвращает true, если статус поля финальный.
func (s FieldStatus) IsTerminal() bool {
	return s != FieldStatusPending && s != ""
}

// IsFailure возвращает true, если статус блокирует зависимые поля.
func (s FieldStatus) IsFailure() bool {
	return s == FieldStatusError || s == FieldStatusBlocked
}
