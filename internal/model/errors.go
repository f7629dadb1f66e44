package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAttribute - общий класс ошибок неверных атрибутов запроса
	ErrInvalidAttribute = errors.New("invalid attribute")
	// ErrNotFound - атрибут ссылается на несуществующую сущность
	ErrNotFound = errors.New("entity not found")
)

// AttributeError описывает ошибку в атрибутах запроса (отсутствует id,
// ссылка на несуществующую сущность, несохраненный тег)
type AttributeError struct {
	Message  string
	NotFound bool
}

// NewAttributeError создает ошибку неверного атрибута
func NewAttributeError(message string) *AttributeError {
	return &AttributeError{Message: message}
}

// NewNotFoundError создает ошибку ссылки на несуществующую сущность
func NewNotFoundError(message string) *AttributeError {
	return &AttributeError{Message: message, NotFound: true}
}

func (e *AttributeError) Error() string {
	return e.Message
}

// Is позволяет сравнивать ошибку с ErrInvalidAttribute и ErrNotFound через errors.Is
func (e *AttributeError) Is(target error) bool {
	switch target {
	case ErrInvalidAttribute:
		return true
	case ErrNotFound:
		return e.NotFound
	}
	return false
}

// Violation - нарушение ограничения одного поля
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// ConstraintError содержит все нарушенные ограничения полей сущности
type ConstraintError struct {
	Entity     string
	Violations []Violation
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint violation: %s", e.Entity, strings.Join(e.Messages(), "; "))
}

// Messages возвращает нарушения в формате "field: message"
func (e *ConstraintError) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return msgs
}
