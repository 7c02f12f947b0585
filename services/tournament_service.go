package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/phases"
)

type TournamentService interface {
	Formats(ctx context.Context, token string) ([]models.TournamentFormat, error)
	List(ctx context.Context, token string, page int) (*models.TournamentsPage, error)
	Get(ctx context.Context, token, id string) (*models.Tournament, error)
	Create(ctx context.Context, token string, req models.CreateTournamentRequest) (*models.Tournament, error)

	AddTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error)
	AddTeamsBulk(ctx context.Context, token, tournamentID string, teamIDs []string) (*models.MessageResponse, error)
	RemoveTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error)

	Fixtures(ctx context.Context, token, tournamentID string) (*models.FixturesResponse, error)
	GenerateFixtures(ctx context.Context, token, tournamentID string) (*models.MessageResponse, error)

	Phases(ctx context.Context, token, tournamentID string) ([]models.Phase, error)
	CreatePhase(ctx context.Context, token, tournamentID string, req models.PhaseRequest) (*models.Phase, error)
	UpdatePhase(ctx context.Context, token, tournamentID, phaseID string, req models.PhaseRequest) (*models.Phase, error)
	GeneratePhaseFixtures(ctx context.Context, token, tournamentID, phaseID string) (*models.MessageResponse, error)
}

type tournamentService struct {
	api TournamentAPI
	log *slog.Logger
}

func NewTournamentService(api TournamentAPI, log *slog.Logger) TournamentService {
	return &tournamentService{api: api, log: log}
}

func (s *tournamentService) Formats(ctx context.Context, token string) ([]models.TournamentFormat, error) {
	formats, err := s.api.Formats(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list formats: %w", mapAPIError(err))
	}
	return formats, nil
}

func (s *tournamentService) List(ctx context.Context, token string, page int) (*models.TournamentsPage, error) {
	rsp, err := s.api.Tournaments(ctx, token, page)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", mapAPIError(err))
	}
	return rsp, nil
}

func (s *tournamentService) Get(ctx context.Context, token, id string) (*models.Tournament, error) {
	t, err := s.api.Tournament(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("get tournament %s: %w", id, mapAPIError(err))
	}
	return t, nil
}

func (s *tournamentService) Create(ctx context.Context, token string, req models.CreateTournamentRequest) (*models.Tournament, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Format = strings.TrimSpace(req.Format)
	if err := requireFields(map[string]string{
		"name":       req.Name,
		"start_date": req.StartDate,
		"format":     req.Format,
	}); err != nil {
		return nil, err
	}
	if err := validateDate("start_date", req.StartDate); err != nil {
		return nil, err
	}
	if req.InscriptionFeeMoney < 0 {
		return nil, &FieldError{Field: "inscription_fee_money", Message: "must not be negative"}
	}
	params := map[string]*int{
		"groups":          req.Groups,
		"teams_per_group": req.TeamsPerGroup,
		"playoff_size":    req.PlayoffSize,
		"rounds":          req.Rounds,
	}
	for name, v := range params {
		if err := positiveOrNil(name, v); err != nil {
			return nil, err
		}
	}

	formats, err := s.api.Formats(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load formats: %w", mapAPIError(err))
	}
	format, ok := findFormat(formats, req.Format)
	if !ok {
		return nil, &FieldError{Field: "format", Message: "unknown tournament format"}
	}
	for _, name := range format.RequiredParams {
		if v, numeric := params[name]; numeric && v == nil {
			return nil, &FieldError{Field: name, Message: "required"}
		}
	}

	t, err := s.api.CreateTournament(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("create tournament: %w", mapAPIError(err))
	}
	s.log.Info("tournament created", slog.String("tournament_id", t.ID), slog.String("format", t.Format))
	return t, nil
}

func findFormat(formats []models.TournamentFormat, value string) (models.TournamentFormat, bool) {
	for _, f := range formats {
		if f.Value == value {
			return f, true
		}
	}
	return models.TournamentFormat{}, false
}

func (s *tournamentService) AddTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error) {
	if err := requireFields(map[string]string{"team_id": teamID}); err != nil {
		return nil, err
	}
	rsp, err := s.api.AddTeam(ctx, token, tournamentID, teamID)
	if err != nil {
		return nil, fmt.Errorf("add team %s to tournament %s: %w", teamID, tournamentID, mapAPIError(err))
	}
	return rsp, nil
}

func (s *tournamentService) AddTeamsBulk(ctx context.Context, token, tournamentID string, teamIDs []string) (*models.MessageResponse, error) {
	ids := make([]string, 0, len(teamIDs))
	seen := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, &FieldError{Field: "team_ids", Message: "at least one team is required"}
	}
	rsp, err := s.api.AddTeamsBulk(ctx, token, tournamentID, ids)
	if err != nil {
		return nil, fmt.Errorf("add %d teams to tournament %s: %w", len(ids), tournamentID, mapAPIError(err))
	}
	return rsp, nil
}

func (s *tournamentService) RemoveTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error) {
	rsp, err := s.api.RemoveTeam(ctx, token, tournamentID, teamID)
	if err != nil {
		return nil, fmt.Errorf("remove team %s from tournament %s: %w", teamID, tournamentID, mapAPIError(err))
	}
	return rsp, nil
}

func (s *tournamentService) Fixtures(ctx context.Context, token, tournamentID string) (*models.FixturesResponse, error) {
	rsp, err := s.api.Fixtures(ctx, token, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("fixtures of tournament %s: %w", tournamentID, mapAPIError(err))
	}
	return rsp, nil
}

func (s *tournamentService) GenerateFixtures(ctx context.Context, token, tournamentID string) (*models.MessageResponse, error) {
	rsp, err := s.api.GenerateFixtures(ctx, token, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("generate fixtures of tournament %s: %w", tournamentID, mapAPIError(err))
	}
	s.log.Info("fixtures generated", slog.String("tournament_id", tournamentID))
	return rsp, nil
}

func (s *tournamentService) Phases(ctx context.Context, token, tournamentID string) ([]models.Phase, error) {
	list, err := s.api.Phases(ctx, token, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("phases of tournament %s: %w", tournamentID, mapAPIError(err))
	}
	return list, nil
}

// preparePhase проверяет фазу по каталогу типов и приводит её к виду запроса.
func (s *tournamentService) preparePhase(ctx context.Context, token string, req models.PhaseRequest) (models.PhaseRequest, error) {
	reg, err := phases.Load(ctx, tokenSource{api: s.api, token: token})
	if err != nil {
		return models.PhaseRequest{}, fmt.Errorf("load phase types: %w", mapAPIError(err))
	}
	p := req.Phase()
	res, err := phases.ValidatePhase(p, reg)
	if err != nil {
		return models.PhaseRequest{}, err
	}
	if len(res.UnknownKeys) > 0 {
		s.log.Warn("unrecognized phase config keys",
			slog.String("type", p.Type),
			slog.Any("keys", res.UnknownKeys))
	}
	return phases.PhaseRequestFor(p, reg), nil
}

func (s *tournamentService) CreatePhase(ctx context.Context, token, tournamentID string, req models.PhaseRequest) (*models.Phase, error) {
	wire, err := s.preparePhase(ctx, token, req)
	if err != nil {
		return nil, err
	}
	p, err := s.api.CreatePhase(ctx, token, tournamentID, wire)
	if err != nil {
		return nil, fmt.Errorf("create phase in tournament %s: %w", tournamentID, mapAPIError(err))
	}
	s.log.Info("phase created", slog.String("tournament_id", tournamentID), slog.String("phase_id", p.ID))
	return p, nil
}

func (s *tournamentService) UpdatePhase(ctx context.Context, token, tournamentID, phaseID string, req models.PhaseRequest) (*models.Phase, error) {
	wire, err := s.preparePhase(ctx, token, req)
	if err != nil {
		return nil, err
	}
	p, err := s.api.UpdatePhase(ctx, token, tournamentID, phaseID, wire)
	if err != nil {
		return nil, fmt.Errorf("update phase %s: %w", phaseID, mapAPIError(err))
	}
	return p, nil
}

func (s *tournamentService) GeneratePhaseFixtures(ctx context.Context, token, tournamentID, phaseID string) (*models.MessageResponse, error) {
	rsp, err := s.api.GeneratePhaseFixtures(ctx, token, tournamentID, phaseID)
	if err != nil {
		return nil, fmt.Errorf("generate fixtures of phase %s: %w", phaseID, mapAPIError(err))
	}
	s.log.Info("phase fixtures generated", slog.String("tournament_id", tournamentID), slog.String("phase_id", phaseID))
	return rsp, nil
}
