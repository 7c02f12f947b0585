package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-admin/apiclient"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidationFailed  = errors.New("validation failed")
	ErrPasswordMismatch  = errors.New("password confirmation does not match")
	ErrUnsupportedShield = errors.New("shield must be an image")
	ErrEventNotRecorded  = errors.New("event type cannot be recorded directly")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrSessionExpired       = errors.New("session expired, sign in again")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Редакторы схем
	ErrEditorNotFound = errors.New("schema editor not found")

	// Удалённый API
	ErrRemoteUnavailable = errors.New("tournament API is unavailable")
)

// RemoteValidationError - ответ API 400/422 с сообщением и ошибками по полям.
type RemoteValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *RemoteValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrValidationFailed.Error()
}

func (e *RemoteValidationError) Is(target error) bool { return target == ErrValidationFailed }

// FieldError - локальная ошибка валидации входных данных.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func (e *FieldError) Is(target error) bool { return target == ErrValidationFailed }

// PersistError - сохранение схемы не удалось, локальное состояние не тронуто.
type PersistError struct {
	Message string
	Err     error
}

func (e *PersistError) Error() string { return "save schema: " + e.Message }

func (e *PersistError) Unwrap() error { return e.Err }

const genericPersistMessage = "the schema could not be saved, try again"

func newPersistError(err error) *PersistError {
	pe := &PersistError{Message: genericPersistMessage, Err: mapAPIError(err)}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		pe.Message = apiErr.Message
	}
	return pe
}

// mapAPIError переводит ошибки удалённого API в ошибки сервисного слоя.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return ErrSessionExpired
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbiddenOperation, apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &RemoteValidationError{Message: apiErr.Message, Fields: firstMessages(apiErr.Fields)}
	default:
		return fmt.Errorf("%w: %w", ErrRemoteUnavailable, apiErr)
	}
}

func firstMessages(fields map[string][]string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, msgs := range fields {
		if len(msgs) > 0 {
			out[k] = msgs[0]
		}
	}
	return out
}
