package phases

import (
	"slices"
	"strings"

	"github.com/Dosada05/tournament-admin/models"
)

// Settings - типизированные настройки фазы. Конкретный вариант выбирается по
// значению типа фазы; для типов без своего варианта используется GenericSettings.
type Settings interface {
	PhaseType() string
	// HomeAwayEnabled - итоговое значение дом/выезд с учётом supports_home_away.
	HomeAwayEnabled() bool
}

type RoundRobinSettings struct {
	HomeAway     bool
	TeamsAdvance int
	Extra        map[string]int
}

func (RoundRobinSettings) PhaseType() string       { return models.PhaseTypeRoundRobin }
func (s RoundRobinSettings) HomeAwayEnabled() bool { return s.HomeAway }

type SingleEliminationSettings struct {
	HomeAway     bool
	TeamsAdvance int
	Extra        map[string]int
}

func (SingleEliminationSettings) PhaseType() string       { return models.PhaseTypeSingleElimination }
func (s SingleEliminationSettings) HomeAwayEnabled() bool { return s.HomeAway }

type GroupsSettings struct {
	HomeAway      bool
	GroupsCount   int
	TeamsPerGroup int
	TeamsAdvance  int
	Extra         map[string]int
}

func (GroupsSettings) PhaseType() string       { return models.PhaseTypeGroups }
func (s GroupsSettings) HomeAwayEnabled() bool { return s.HomeAway }

// GenericSettings покрывает типы, которые сервер добавил в каталог позже.
type GenericSettings struct {
	Type         string
	HomeAway     bool
	TeamsAdvance int
	Values       map[string]any
}

func (s GenericSettings) PhaseType() string     { return s.Type }
func (s GenericSettings) HomeAwayEnabled() bool { return s.HomeAway }

// decodeSettings переводит свободный config в вариант Settings. Фаза уже проверена.
// Вторым значением возвращаются ключи, которых тип не объявляет.
func decodeSettings(p models.Phase, desc models.PhaseType) (Settings, []string) {
	homeAway := desc.SupportsHomeAway && requestedHomeAway(p)
	teamsAdvance, _, _ := numericValue(p, models.FieldTeamsAdvance)

	extra := make(map[string]int)
	values := make(map[string]any)
	var unknown []string
	for k, v := range p.Config {
		if k == models.FieldHomeAway || numericFields[k] {
			continue
		}
		if isConfigOption(desc, k) {
			if n, present, _ := positiveInt(v); present {
				extra[k] = n
				values[k] = n
			}
			continue
		}
		if !slices.Contains(desc.RequiredFields, k) && !slices.Contains(desc.OptionalFields, k) {
			unknown = append(unknown, k)
		}
		values[k] = v
	}
	slices.Sort(unknown)

	switch desc.Value {
	case models.PhaseTypeRoundRobin:
		return RoundRobinSettings{HomeAway: homeAway, TeamsAdvance: teamsAdvance, Extra: extra}, unknown
	case models.PhaseTypeSingleElimination:
		return SingleEliminationSettings{HomeAway: homeAway, TeamsAdvance: teamsAdvance, Extra: extra}, unknown
	case models.PhaseTypeGroups:
		groups, _, _ := numericValue(p, models.FieldGroupsCount)
		perGroup, _, _ := numericValue(p, models.FieldTeamsPerGroup)
		return GroupsSettings{
			HomeAway:      homeAway,
			GroupsCount:   groups,
			TeamsPerGroup: perGroup,
			TeamsAdvance:  teamsAdvance,
			Extra:         extra,
		}, unknown
	default:
		return GenericSettings{Type: desc.Value, HomeAway: homeAway, TeamsAdvance: teamsAdvance, Values: values}, unknown
	}
}

// WirePhase приводит фазу к виду, в котором она уходит на сервер: имя без пробелов
// по краям, неположительные числа убраны, числовые строки стали числами. Если тип
// не поддерживает дом/выезд, home_away молча отбрасывается.
func WirePhase(p models.Phase, reg *Registry) models.Phase {
	q := p.Clone()
	q.Name = strings.TrimSpace(q.Name)
	q.TeamsAdvance = positivePtr(q.TeamsAdvance)
	q.GroupsCount = positivePtr(q.GroupsCount)
	q.TeamsPerGroup = positivePtr(q.TeamsPerGroup)

	desc, known := reg.FindByValue(q.Type)
	if known {
		q.HomeAway = desc.SupportsHomeAway && requestedHomeAway(p)
	}

	for k, v := range q.Config {
		switch {
		case k == models.FieldHomeAway:
			if known && !desc.SupportsHomeAway {
				delete(q.Config, k)
				continue
			}
			if b, ok := parseBool(v); ok {
				q.Config[k] = b
			}
		case numericFields[k] || (known && isConfigOption(desc, k)):
			n, present, ok := positiveInt(v)
			switch {
			case !ok:
			case present:
				q.Config[k] = n
			default:
				delete(q.Config, k)
			}
		}
	}
	if len(q.Config) == 0 {
		q.Config = nil
	}
	return q
}

// WireSchema приводит всю схему к виду для PUT. Порядок фаз сохраняется.
func WireSchema(s models.PhaseSchema, reg *Registry) models.PhaseSchema {
	out := models.PhaseSchema{Phases: make([]models.Phase, len(s.Phases))}
	for i, p := range s.Phases {
		out.Phases[i] = WirePhase(p, reg)
	}
	return out
}

// PhaseRequestFor строит тело запроса создания/обновления одной фазы. Серверные поля
// и order в запрос не попадают.
func PhaseRequestFor(p models.Phase, reg *Registry) models.PhaseRequest {
	w := WirePhase(p, reg)
	return models.PhaseRequest{
		Name:          w.Name,
		Type:          w.Type,
		HomeAway:      w.HomeAway,
		TeamsAdvance:  w.TeamsAdvance,
		GroupsCount:   w.GroupsCount,
		TeamsPerGroup: w.TeamsPerGroup,
		Config:        w.Config,
	}
}
