// Package phases содержит ядро редактора схемы турнира: реестр типов фаз,
// валидацию фаз по реестру и конечный автомат редактора схемы.
package phases

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-admin/models"
)

// Source загружает каталог типов фаз с бэкенда.
type Source interface {
	PhaseTypes(ctx context.Context) ([]models.PhaseType, error)
}

// FetchError означает, что реестр загрузить не удалось. Вызывающий код считает реестр
// недоступным и продолжает работу с пустым реестром.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("phase types unavailable: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Registry - неизменяемый снимок каталога типов фаз.
type Registry struct {
	types []models.PhaseType
	index map[string]int
}

// NewRegistry строит реестр из каталога. При повторе value остаётся первая запись.
func NewRegistry(types []models.PhaseType) *Registry {
	r := &Registry{
		types: make([]models.PhaseType, 0, len(types)),
		index: make(map[string]int, len(types)),
	}
	for _, t := range types {
		if _, ok := r.index[t.Value]; ok {
			continue
		}
		r.index[t.Value] = len(r.types)
		r.types = append(r.types, t)
	}
	return r
}

// Load загружает каталог один раз. Результат кэшируется на всю сессию редактирования.
func Load(ctx context.Context, src Source) (*Registry, error) {
	types, err := src.PhaseTypes(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return NewRegistry(types), nil
}

// FindByValue возвращает описание типа по value. В nil-реестре ничего не находится.
func (r *Registry) FindByValue(value string) (models.PhaseType, bool) {
	if r == nil {
		return models.PhaseType{}, false
	}
	i, ok := r.index[value]
	if !ok {
		return models.PhaseType{}, false
	}
	return r.types[i], true
}

func (r *Registry) Types() []models.PhaseType {
	if r == nil {
		return []models.PhaseType{}
	}
	out := make([]models.PhaseType, len(r.types))
	copy(out, r.types)
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.types)
}
