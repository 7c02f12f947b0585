package models

import "maps"

// PhaseType описывает тип фазы турнира из каталога, который отдаёт API.
type PhaseType struct {
	Value            string            `json:"value"`
	Label            string            `json:"label"`
	Description      string            `json:"description"`
	SupportsHomeAway bool              `json:"supports_home_away"`
	RequiredFields   []string          `json:"required_fields"`
	OptionalFields   []string          `json:"optional_fields"`
	ConfigOptions    map[string]string `json:"config_options"`
}

type PhaseTypesResponse struct {
	PhaseTypes []PhaseType `json:"phase_types"`
}

// Известные типы фаз. Каталог приходит с сервера, для этих типов есть
// типизированные настройки.
const (
	PhaseTypeRoundRobin        = "round_robin"
	PhaseTypeSingleElimination = "single_elimination"
	PhaseTypeGroups            = "groups"
)

// Имена полей, общие для описаний типов и правок черновика.
const (
	FieldName          = "name"
	FieldType          = "type"
	FieldHomeAway      = "home_away"
	FieldTeamsAdvance  = "teams_advance"
	FieldGroupsCount   = "groups_count"
	FieldTeamsPerGroup = "teams_per_group"
)

// PhaseConfig хранит настройки конкретного типа: строки, числа или bool.
type PhaseConfig map[string]any

// Phase - один этап схемы турнира. Серверные поля (ID, PhaseNumber, IsActive,
// IsCompleted, MatchesCount) заполнены только у сохранённых фаз.
type Phase struct {
	ID            string      `json:"id,omitempty"`
	Name          string      `json:"name"`
	Type          string      `json:"type"`
	Order         int         `json:"order"`
	HomeAway      bool        `json:"home_away,omitempty"`
	TeamsAdvance  *int        `json:"teams_advance,omitempty"`
	GroupsCount   *int        `json:"groups_count,omitempty"`
	TeamsPerGroup *int        `json:"teams_per_group,omitempty"`
	Config        PhaseConfig `json:"config,omitempty"`

	PhaseNumber  *int `json:"phase_number,omitempty"`
	IsActive     bool `json:"is_active,omitempty"`
	IsCompleted  bool `json:"is_completed,omitempty"`
	MatchesCount *int `json:"matches_count,omitempty"`
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone возвращает глубокую копию фазы.
func (p Phase) Clone() Phase {
	p.TeamsAdvance = cloneInt(p.TeamsAdvance)
	p.GroupsCount = cloneInt(p.GroupsCount)
	p.TeamsPerGroup = cloneInt(p.TeamsPerGroup)
	p.PhaseNumber = cloneInt(p.PhaseNumber)
	p.MatchesCount = cloneInt(p.MatchesCount)
	if p.Config != nil {
		p.Config = maps.Clone(p.Config)
	}
	return p
}

// PhaseSchema - полная упорядоченная структура турнира.
type PhaseSchema struct {
	Phases []Phase `json:"phases"`
}

func (s PhaseSchema) Clone() PhaseSchema {
	phases := make([]Phase, len(s.Phases))
	for i, p := range s.Phases {
		phases[i] = p.Clone()
	}
	return PhaseSchema{Phases: phases}
}

type SchemaEnvelope struct {
	Schema PhaseSchema `json:"schema"`
}

// PhaseRequest - тело запросов создания и обновления отдельной фазы.
type PhaseRequest struct {
	Name          string      `json:"name"`
	Type          string      `json:"type"`
	HomeAway      bool        `json:"home_away"`
	TeamsAdvance  *int        `json:"teams_advance,omitempty"`
	GroupsCount   *int        `json:"groups_count,omitempty"`
	TeamsPerGroup *int        `json:"teams_per_group,omitempty"`
	Config        PhaseConfig `json:"config,omitempty"`
}

// Phase превращает запрос в черновик фазы без серверных полей.
func (r PhaseRequest) Phase() Phase {
	return Phase{
		Name:          r.Name,
		Type:          r.Type,
		HomeAway:      r.HomeAway,
		TeamsAdvance:  cloneInt(r.TeamsAdvance),
		GroupsCount:   cloneInt(r.GroupsCount),
		TeamsPerGroup: cloneInt(r.TeamsPerGroup),
		Config:        maps.Clone(r.Config),
	}
}
