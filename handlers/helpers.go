package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-admin/phases"
	"github.com/Dosada05/tournament-admin/services"
	"github.com/Dosada05/tournament-admin/session"
)

type jsonResponse map[string]any

const maxBodyBytes = 1_048_576 // 1MB

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

var (
	errEmptyBody      = errors.New("body must not be empty")
	errMissingMatchID = errors.New("missing match ID in URL path")
)

// readOptionalJSON как readJSON, но пустое тело не ошибка. Возвращает true, если тело было.
func readOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) (bool, error) {
	err := readJSON(w, r, dst)
	if errors.Is(err, errEmptyBody) {
		return false, nil
	}
	return err == nil, err
}

func writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	writeEnvelope(w, r, status, jsonResponse{"error": message})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env jsonResponse) {
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Default().Error("failed to write error response",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Default().Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// errorStatus определяет HTTP статус и тело "error" для ошибки сервисного слоя.
// Для неизвестных ошибок возвращает 500 и nil.
func errorStatus(err error) (int, any) {
	var (
		remote  *services.RemoteValidationError
		field   *services.FieldError
		persist *services.PersistError
		fetch   *phases.FetchError
	)
	switch {
	// Истёкшая сессия проверяется первой: она может прийти внутри PersistError.
	case errors.Is(err, services.ErrSessionExpired), errors.Is(err, session.ErrExpired):
		return http.StatusUnauthorized, services.ErrSessionExpired.Error()
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrAuthenticationFailed):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbiddenOperation):
		return http.StatusForbidden, err.Error()
	case errors.As(err, &persist):
		return http.StatusBadGateway, persist.Message

	// Ошибки валидации формы
	case phases.FieldErrors(err) != nil:
		return http.StatusUnprocessableEntity, phases.FieldErrors(err)
	case errors.As(err, &field):
		return http.StatusUnprocessableEntity, map[string]string{field.Field: field.Message}
	case errors.As(err, &remote):
		if len(remote.Fields) > 0 {
			return http.StatusUnprocessableEntity, remote.Fields
		}
		return http.StatusUnprocessableEntity, remote.Error()

	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrEditorNotFound),
		errors.Is(err, phases.ErrIndexOutOfRange):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, phases.ErrInvalidTransition):
		return http.StatusConflict, err.Error()

	// Удалённый API недоступен
	case errors.As(err, &fetch), errors.Is(err, services.ErrRemoteUnavailable):
		return http.StatusBadGateway, services.ErrRemoteUnavailable.Error()
	}
	return http.StatusInternalServerError, nil
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		serverErrorResponse(w, r, err)
		return
	}
	if status == http.StatusBadGateway {
		slog.Default().Warn("tournament API request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	errorResponse(w, r, status, message)
}

func getIndexFromURL(r *http.Request, paramName string) (int, error) {
	raw := chi.URLParam(r, paramName)
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid %s parameter: %q", paramName, raw)
	}
	return i, nil
}

// currentSession достаёт сессию, положенную middleware.RequireSession.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, session.ErrNoSession.Error())
		return nil, false
	}
	return s, true
}
