package service

import (
	"errors"
	"fmt"
	repo "taskTimeline/internal/repository"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeUnknownLayout   = "UNKNOWN_LAYOUT"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id int64) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %d не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
		Err: repo.ErrNotFound,
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewVersionConflict(id int64, version int) *BusinessError {
	return &BusinessError{
		Code:    CodeVersionConflict,
		Message: fmt.Sprintf("задача %d изменена другим запросом", id),
		Details: map[string]any{
			"id":      id,
			"version": version,
		},
		Err: repo.ErrVersionConflict,
	}
}

func NewUnknownLayout(name string, known []string) *BusinessError {
	return NewBusinessError(CodeUnknownLayout,
		fmt.Sprintf("раскладка доски '%s' не настроена", name),
		ToDetail("layout", name),
		ToDetail("known", known),
	)
}

// fromRepoError переводит ошибки хранилища в бизнес-ошибки, остальное оборачивает
func fromRepoError(err error, op string, t int64, version int) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewNotFound("задача", t)
	case errors.Is(err, repo.ErrVersionConflict):
		return NewVersionConflict(t, version)
	}
	return fmt.Errorf("%s: %w", op, err)
}
