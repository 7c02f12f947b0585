package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dosada05/tournament-admin/models"
)

func tournamentPath(id string, rest ...string) string {
	p := "/tournaments/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

func (c *Client) Formats(ctx context.Context, token string) ([]models.TournamentFormat, error) {
	rsp, err := doGet[models.TournamentFormatsResponse](ctx, c, token, "/tournaments/formats")
	if err != nil {
		return nil, err
	}
	return rsp.Formats, nil
}

func (c *Client) PhaseTypes(ctx context.Context, token string) ([]models.PhaseType, error) {
	rsp, err := doGet[models.PhaseTypesResponse](ctx, c, token, "/tournaments/phase-types")
	if err != nil {
		return nil, err
	}
	return rsp.PhaseTypes, nil
}

// PhaseTypeSource привязывает токен к загрузке каталога типов фаз.
type PhaseTypeSource struct {
	Client *Client
	Token  string
}

func (s PhaseTypeSource) PhaseTypes(ctx context.Context) ([]models.PhaseType, error) {
	return s.Client.PhaseTypes(ctx, s.Token)
}

// Tournaments возвращает страницу списка турниров. page <= 0 - первая страница.
func (c *Client) Tournaments(ctx context.Context, token string, page int) (*models.TournamentsPage, error) {
	path := "/tournaments"
	if page > 0 {
		path += "?page=" + strconv.Itoa(page)
	}
	return doGet[models.TournamentsPage](ctx, c, token, path)
}

func (c *Client) Tournament(ctx context.Context, token, id string) (*models.Tournament, error) {
	return doGet[models.Tournament](ctx, c, token, tournamentPath(id))
}

func (c *Client) CreateTournament(ctx context.Context, token string, req models.CreateTournamentRequest) (*models.Tournament, error) {
	return doJSON[models.CreateTournamentRequest, models.Tournament](ctx, c, token, http.MethodPost, "/tournaments", &req)
}

// Schema возвращает схему турнира. Отсутствие схемы приходит как *Error со статусом 404.
func (c *Client) Schema(ctx context.Context, token, tournamentID string) (models.PhaseSchema, error) {
	rsp, err := doGet[models.SchemaEnvelope](ctx, c, token, tournamentPath(tournamentID, "schema"))
	if err != nil {
		return models.PhaseSchema{}, err
	}
	return rsp.Schema, nil
}

// PutSchema отправляет схему целиком и возвращает каноническую копию сервера.
func (c *Client) PutSchema(ctx context.Context, token, tournamentID string, schema models.PhaseSchema) (models.PhaseSchema, error) {
	req := models.SchemaEnvelope{Schema: schema}
	rsp, err := doJSON[models.SchemaEnvelope, models.SchemaEnvelope](ctx, c, token, http.MethodPut, tournamentPath(tournamentID, "schema"), &req)
	if err != nil {
		return models.PhaseSchema{}, err
	}
	if rsp.Schema.Phases == nil {
		rsp.Schema.Phases = []models.Phase{}
	}
	return rsp.Schema, nil
}

func (c *Client) Phases(ctx context.Context, token, tournamentID string) ([]models.Phase, error) {
	rsp, err := doGet[[]models.Phase](ctx, c, token, tournamentPath(tournamentID, "phases"))
	if err != nil {
		return nil, err
	}
	return *rsp, nil
}

func (c *Client) CreatePhase(ctx context.Context, token, tournamentID string, req models.PhaseRequest) (*models.Phase, error) {
	return doJSON[models.PhaseRequest, models.Phase](ctx, c, token, http.MethodPost, tournamentPath(tournamentID, "phases"), &req)
}

func (c *Client) UpdatePhase(ctx context.Context, token, tournamentID, phaseID string, req models.PhaseRequest) (*models.Phase, error) {
	return doJSON[models.PhaseRequest, models.Phase](ctx, c, token, http.MethodPut, tournamentPath(tournamentID, "phases", phaseID), &req)
}

func (c *Client) GeneratePhaseFixtures(ctx context.Context, token, tournamentID, phaseID string) (*models.MessageResponse, error) {
	return doJSON[struct{}, models.MessageResponse](ctx, c, token, http.MethodPost, tournamentPath(tournamentID, "phases", phaseID, "fixtures"), nil)
}

func (c *Client) AddTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error) {
	req := models.AddTeamRequest{TeamID: teamID}
	return doJSON[models.AddTeamRequest, models.MessageResponse](ctx, c, token, http.MethodPost, tournamentPath(tournamentID, "teams"), &req)
}

func (c *Client) AddTeamsBulk(ctx context.Context, token, tournamentID string, teamIDs []string) (*models.MessageResponse, error) {
	if len(teamIDs) == 0 {
		return nil, fmt.Errorf("add teams: empty team list")
	}
	req := models.AddTeamsBulkRequest{TeamIDs: teamIDs}
	return doJSON[models.AddTeamsBulkRequest, models.MessageResponse](ctx, c, token, http.MethodPost, tournamentPath(tournamentID, "teams", "bulk"), &req)
}

func (c *Client) RemoveTeam(ctx context.Context, token, tournamentID, teamID string) (*models.MessageResponse, error) {
	return doJSON[struct{}, models.MessageResponse](ctx, c, token, http.MethodDelete, tournamentPath(tournamentID, "teams", teamID), nil)
}

func (c *Client) Fixtures(ctx context.Context, token, tournamentID string) (*models.FixturesResponse, error) {
	return doGet[models.FixturesResponse](ctx, c, token, tournamentPath(tournamentID, "fixtures"))
}

func (c *Client) GenerateFixtures(ctx context.Context, token, tournamentID string) (*models.MessageResponse, error) {
	return doJSON[struct{}, models.MessageResponse](ctx, c, token, http.MethodPost, tournamentPath(tournamentID, "fixtures", "generate"), nil)
}
