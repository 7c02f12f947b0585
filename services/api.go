package services

import (
	"context"

	"github.com/Dosada05/tournament-admin/apiclient"
	"github.com/Dosada05/tournament-admin/models"
)

// Узкие срезы удалённого API, которые нужны сервисам. *apiclient.Client реализует их все.

type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, token string) (*models.RefreshResponse, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

type SchemaAPI interface {
	PhaseTypes(ctx context.Context, token string) ([]models.PhaseType, error)
	Schema(ctx context.Context, token, tournamentID string) (models.PhaseSchema, error)
	PutSchema(ctx context.Context, token, tournamentID string, schema models.PhaseSchema) (models.PhaseSchema, error)
}

type TournamentAPI interface {
	PhaseTypes(ctx context.Context, token string) ([]models.PhaseType, error)
	Formats(ctx context.Context, token string) ([]models.TournamentFormat, error)
	Tournaments(ctx context.Context, token string, page int) (*models.TournamentsPage, error)
	Tournament(ctx context.Context, token, id string) (*models.Tournament, error)
	CreateTournament(ctx context.Context, token string, req models.CreateTournamentRequest) (*models.Tournament, error)
	Phases(ctx context.Context, token, tournamentID string) ([]models.Phase, error)
	CreatePhase(ctx context.Context, token, tournamentID string, req models.PhaseRequest) (*models.Phase, error)
	UpdatePhase(ctx context.Context, token, tournamentID, phaseID string, req models.PhaseRequest) (*models.Phase, error)
	GeneratePhaseFixtures(ctx context.Context, token, tournamentID, phaseID string) (*models.MessageResponse, error)
	AddTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error)
	AddTeamsBulk(ctx context.Context, token, tournamentID string, teamIDs []string) (*models.MessageResponse, error)
	RemoveTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error)
	Fixtures(ctx context.Context, token, tournamentID string) (*models.FixturesResponse, error)
	GenerateFixtures(ctx context.Context, token, tournamentID string) (*models.MessageResponse, error)
}

type TeamAPI interface {
	Teams(ctx context.Context, token string, all bool) ([]models.Team, error)
	Team(ctx context.Context, token, id string) (*models.Team, error)
	CreateTeam(ctx context.Context, token string, req models.CreateTeamRequest) (*models.Team, error)
	CreatePlayer(ctx context.Context, token string, req models.CreatePlayerRequest) (*models.Player, error)
	ImportPlayers(ctx context.Context, token string, file *models.FileUpload, fields map[string]string) (*models.PlayerImportResult, error)
	PlayerTemplate(ctx context.Context, token string) (*models.Download, error)
}

type MatchAPI interface {
	ScheduleMatch(ctx context.Context, token, matchID string, req models.ScheduleMatchRequest) (*models.Match, error)
	RegisterLineup(ctx context.Context, token, matchID string, req models.RegisterLineupRequest) (*models.MessageResponse, error)
	Lineups(ctx context.Context, token, matchID string) (*models.MatchLineups, error)
	AddEvent(ctx context.Context, token, matchID string, req models.MatchEventRequest) (*models.MatchEvent, error)
	Events(ctx context.Context, token, matchID string) ([]models.MatchEvent, error)
	AddSubstitution(ctx context.Context, token, matchID string, req models.SubstitutionRequest) (*models.MatchEvent, error)
}

var (
	_ AuthAPI       = (*apiclient.Client)(nil)
	_ SchemaAPI     = (*apiclient.Client)(nil)
	_ TournamentAPI = (*apiclient.Client)(nil)
	_ TeamAPI       = (*apiclient.Client)(nil)
	_ MatchAPI      = (*apiclient.Client)(nil)
)
