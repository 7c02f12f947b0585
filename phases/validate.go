package phases

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Dosada05/tournament-admin/models"
)

var (
	ErrMissingName   = errors.New("phase name is required")
	ErrUnknownType   = errors.New("unknown phase type")
	ErrInvalidConfig = errors.New("invalid phase configuration")
)

// ValidationError - ошибка одного поля.
type ValidationError struct {
	Field  string
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors собирает все ошибки одной фазы. errors.Is находит любую из них.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (es ValidationErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// FieldErrors превращает ошибку валидации в карту поле -> сообщение для формы.
// Для прочих ошибок возвращает nil.
func FieldErrors(err error) map[string]string {
	var es ValidationErrors
	if errors.As(err, &es) {
		out := make(map[string]string, len(es))
		for _, e := range es {
			if _, ok := out[e.Field]; !ok {
				out[e.Field] = e.Error()
			}
		}
		return out
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return map[string]string{single.Field: single.Error()}
	}
	return nil
}

// Result - результат успешной валидации фазы.
type Result struct {
	Type     models.PhaseType
	Settings Settings
	// Ключи config, которых нет ни в типе, ни в модели фазы.
	UnknownKeys []string
}

// ValidatePhase проверяет фазу по снимку реестра.
//
// Неположительные числа считаются отсутствующими. home_away никогда не даёт ошибку,
// он действует только для типов, которые его поддерживают.
func ValidatePhase(p models.Phase, reg *Registry) (*Result, error) {
	var errs ValidationErrors

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, &ValidationError{Field: models.FieldName, Err: ErrMissingName})
	}

	desc, ok := reg.FindByValue(p.Type)
	if !ok {
		detail := fmt.Sprintf("%q", p.Type)
		if p.Type == "" {
			detail = "no type selected"
		}
		errs = append(errs, &ValidationError{Field: models.FieldType, Err: ErrUnknownType, Detail: detail})
		return nil, errs
	}

	errs = append(errs, checkShapes(p, desc)...)

	for _, field := range desc.RequiredFields {
		if field == models.FieldName || field == models.FieldType || field == models.FieldHomeAway {
			continue
		}
		if _, present, ok := numericValue(p, field); ok && !present {
			errs = append(errs, &ValidationError{Field: field, Err: ErrInvalidConfig, Detail: "required"})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	settings, unknown := decodeSettings(p, desc)
	return &Result{Type: desc, Settings: settings, UnknownKeys: unknown}, nil
}

func checkShapes(p models.Phase, desc models.PhaseType) ValidationErrors {
	var errs ValidationErrors
	keys := make([]string, 0, len(p.Config))
	for k := range p.Config {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v := p.Config[k]
		switch {
		case k == models.FieldHomeAway:
			if _, ok := parseBool(v); !ok {
				errs = append(errs, &ValidationError{Field: k, Err: ErrInvalidConfig, Detail: "expected a boolean"})
			}
		case numericFields[k] || isConfigOption(desc, k):
			if _, _, ok := positiveInt(v); !ok {
				errs = append(errs, &ValidationError{Field: k, Err: ErrInvalidConfig, Detail: fmt.Sprintf("expected a positive integer, got %v", v)})
			}
		default:
			switch v.(type) {
			case nil, string, bool, int, int64, float64:
			default:
				errs = append(errs, &ValidationError{Field: k, Err: ErrInvalidConfig, Detail: fmt.Sprintf("unsupported value type %T", v)})
			}
		}
	}
	return errs
}

func isConfigOption(desc models.PhaseType, key string) bool {
	_, ok := desc.ConfigOptions[key]
	return ok
}
