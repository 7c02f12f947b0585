package models

import "encoding/json"

// TournamentFormat - запись каталога форматов, используемого при создании турнира.
type TournamentFormat struct {
	Value          string   `json:"value"`
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	RequiredParams []string `json:"required_params"`
	OptionalParams []string `json:"optional_params"`
	IgnoredParams  []string `json:"ignored_params"`
}

type TournamentFormatsResponse struct {
	Formats []TournamentFormat `json:"formats"`
}

type CreateTournamentRequest struct {
	Name                string  `json:"name"`
	StartDate           string  `json:"start_date"`
	InscriptionFeeMoney float64 `json:"inscription_fee_money"`
	Currency            string  `json:"currency"`
	Format              string  `json:"format"`
	Groups              *int    `json:"groups,omitempty"`
	TeamsPerGroup       *int    `json:"teams_per_group,omitempty"`
	PlayoffSize         *int    `json:"playoff_size,omitempty"`
	Rounds              *int    `json:"rounds,omitempty"`
	HomeAway            *bool   `json:"home_away,omitempty"`
}

// Tournament представляет турнир в том виде, в каком его отдаёт API.
type Tournament struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	StartDate           string          `json:"start_date"`
	InscriptionFeeMoney string          `json:"inscription_fee_money"`
	Currency            string          `json:"currency"`
	Owner               *User           `json:"owner,omitempty"`
	Status              string          `json:"status"`
	Format              string          `json:"format"`
	Groups              *int            `json:"groups,omitempty"`
	TeamsPerGroup       *int            `json:"teams_per_group,omitempty"`
	PlayoffSize         *int            `json:"playoff_size,omitempty"`
	Rounds              *int            `json:"rounds,omitempty"`
	HomeAway            bool            `json:"home_away,omitempty"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
	Teams               json.RawMessage `json:"teams,omitempty"`
	Matches             json.RawMessage `json:"matches,omitempty"`
}

type PaginationLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

type TournamentsPage struct {
	CurrentPage  int              `json:"current_page"`
	Data         []Tournament     `json:"data"`
	FirstPageURL string           `json:"first_page_url"`
	From         int              `json:"from"`
	LastPage     int              `json:"last_page"`
	LastPageURL  string           `json:"last_page_url"`
	Links        []PaginationLink `json:"links"`
	NextPageURL  *string          `json:"next_page_url"`
	Path         string           `json:"path"`
	PerPage      int              `json:"per_page"`
	PrevPageURL  *string          `json:"prev_page_url"`
	To           int              `json:"to"`
	Total        int              `json:"total"`
}

type AddTeamRequest struct {
	TeamID string `json:"team_id"`
}

type AddTeamsBulkRequest struct {
	TeamIDs []string `json:"team_ids"`
}

// MessageResponse - ответ API без данных, только сообщение.
type MessageResponse struct {
	Message string `json:"message"`
}
