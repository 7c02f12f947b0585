package models

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusFinished   MatchStatus = "finished"
)

type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Match struct {
	ID        string      `json:"id"`
	HomeTeam  TeamRef     `json:"home_team"`
	AwayTeam  TeamRef     `json:"away_team"`
	Status    MatchStatus `json:"status"`
	MatchDate *string     `json:"match_date,omitempty"`
	Venue     *string     `json:"venue,omitempty"`
}

type FixtureRound struct {
	Round   int     `json:"round"`
	Matches []Match `json:"matches"`
}

type PhaseFixtures struct {
	PhaseID   string         `json:"phase_id"`
	PhaseName string         `json:"phase_name"`
	Rounds    []FixtureRound `json:"rounds"`
}

type FixturesResponse struct {
	Phases []PhaseFixtures `json:"phases"`
}

type ScheduleMatchRequest struct {
	MatchDate string  `json:"match_date"`
	Venue     *string `json:"venue,omitempty"`
}

type LineupEntry struct {
	PlayerID    string `json:"player_id"`
	IsStarter   bool   `json:"is_starter"`
	ShirtNumber int    `json:"shirt_number"`
}

type RegisterLineupRequest struct {
	TeamID  string        `json:"team_id"`
	Players []LineupEntry `json:"players"`
}

type LineupPlayer struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	ShirtNumber int    `json:"shirt_number"`
}

type TeamLineup struct {
	TeamID      string         `json:"team_id"`
	TeamName    string         `json:"team_name"`
	Starters    []LineupPlayer `json:"starters"`
	Substitutes []LineupPlayer `json:"substitutes"`
}

type MatchLineups struct {
	HomeTeam TeamLineup `json:"home_team"`
	AwayTeam TeamLineup `json:"away_team"`
}

type MatchEventType string

const (
	EventGoal         MatchEventType = "goal"
	EventYellowCard   MatchEventType = "yellow_card"
	EventRedCard      MatchEventType = "red_card"
	EventBlueCard     MatchEventType = "blue_card"
	EventSubstitution MatchEventType = "substitution"
)

// Recordable сообщает, можно ли отправить событие через эндпоинт событий.
// Для замен есть отдельный эндпоинт.
func (t MatchEventType) Recordable() bool {
	switch t {
	case EventGoal, EventYellowCard, EventRedCard, EventBlueCard:
		return true
	}
	return false
}

type MatchEventRequest struct {
	PlayerID    string         `json:"player_id"`
	Type        MatchEventType `json:"type"`
	Minute      *int           `json:"minute,omitempty"`
	Description *string        `json:"description,omitempty"`
}

type EventPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MatchEvent struct {
	ID               string         `json:"id"`
	Type             MatchEventType `json:"type"`
	Minute           int            `json:"minute"`
	Description      string         `json:"description"`
	Player           EventPlayer    `json:"player"`
	SubstitutePlayer *EventPlayer   `json:"substitute_player,omitempty"`
	CreatedAt        string         `json:"created_at"`
}

type SubstitutionRequest struct {
	PlayerOutID string `json:"player_out_id"`
	PlayerInID  string `json:"player_in_id"`
	Minute      int    `json:"minute"`
}
