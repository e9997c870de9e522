package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки валидации схемы.
var (
	// ErrEmptyFields — схема не содержит полей.
	ErrEmptyFields = errors.New("schema has no fields")

	// ErrEmptyFieldID — поле не имеет ID.
	ErrEmptyFieldID = errors.New("field has empty ID")

	// ErrDuplicateFieldID — несколько полей с одинаковым ID.
	ErrDuplicateFieldID = errors.New("duplicate field ID")

	// ErrUnknownFieldType — неизвестный тип поля.
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrUnknownSource — неизвестный источник трансформации.
	ErrUnknownSource = errors.New("unknown transformation source")
)

// Ошибки графа зависимостей.
var (
	// ErrCyclicDependency — обнаружен цикл в зависимостях полей.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrFieldNotFound — поле не найдено в графе.
	ErrFieldNotFound = errors.New("field not found in graph")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	FieldID string // ID поля, где произошла ошибка
	Attr    string // атрибут, вызвавший ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.FieldID != "" {
		return "field " + e.FieldID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(fieldID, attr, message string, err error) *ValidationError {
	return &ValidationError{
		FieldID: fieldID,
		Attr:    attr,
		Message: message,
		Err:     err,
	}
}

// CycleError — ошибка цикла в графе зависимостей.
//
// Содержит ID полей, замешанных в цикле. Возвращается до выполнения
// какой-либо волны: частичное выполнение с последующим обнаружением
// цикла не допускается.
type CycleError struct {
	// FieldIDs — поля с ненулевой входящей степенью после снятия
	// всех доступных волн.
	FieldIDs []string
}

// Error реализует интерфейс error.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency detected among fields: %s",
		strings.Join(e.FieldIDs, ", "))
}

// Unwrap возвращает ErrCyclicDependency для errors.Is проверок.
func (e *CycleError) Unwrap() error {
	return ErrCyclicDependency
}
