package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Dosada05/tournament-admin/apiclient"
	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/session"
	"github.com/Dosada05/tournament-admin/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(n int) *int { return &n }

var errTransport = errors.New("dial tcp: connection refused")

func apiError(status int, msg string) error {
	return &apiclient.Error{Status: status, Message: msg}
}

func testSession(id string) *session.Session {
	return &session.Session{ID: id, Token: "token-" + id}
}

func testPhaseTypes() []models.PhaseType {
	return []models.PhaseType{
		{
			Value:            models.PhaseTypeRoundRobin,
			Label:            "Round robin",
			SupportsHomeAway: true,
			RequiredFields:   []string{"name", "type"},
			OptionalFields:   []string{"home_away", "teams_advance"},
		},
		{
			Value:          models.PhaseTypeSingleElimination,
			Label:          "Single elimination",
			RequiredFields: []string{"name", "type"},
			OptionalFields: []string{"teams_advance"},
		},
		{
			Value:            models.PhaseTypeGroups,
			Label:            "Groups",
			SupportsHomeAway: true,
			RequiredFields:   []string{"name", "type", "groups_count", "teams_per_group"},
			OptionalFields:   []string{"home_away", "teams_advance"},
		},
	}
}

// fakeAPI - удалённый API в памяти. Реализует все срезы API сервисов.
type fakeAPI struct {
	mu sync.Mutex

	typesErr  error
	types     []models.PhaseType
	schema    models.PhaseSchema
	schemaErr error
	putErr    error
	// putHook вызывается во время PUT, до ответа.
	putHook func()
	puts    []models.PhaseSchema
	tokens  []string

	authRsp    *models.AuthResponse
	authErr    error
	refreshRsp *models.RefreshResponse
	me         *models.User
	meCalls    int

	formats      []models.TournamentFormat
	created      []models.CreateTournamentRequest
	phaseReqs    []models.PhaseRequest
	bulk         []string
	writeErr     error
	imports      []string
	importFields map[string]string
	events       []models.MatchEventRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{types: testPhaseTypes(), schema: models.PhaseSchema{Phases: []models.Phase{}}}
}

func (f *fakeAPI) PhaseTypes(_ context.Context, token string) ([]models.PhaseType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.typesErr != nil {
		return nil, f.typesErr
	}
	return f.types, nil
}

func (f *fakeAPI) Schema(context.Context, string, string) (models.PhaseSchema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.schemaErr != nil {
		return models.PhaseSchema{}, f.schemaErr
	}
	return f.schema.Clone(), nil
}

// PutSchema возвращает каноническую копию с серверными id.
func (f *fakeAPI) PutSchema(_ context.Context, _ string, _ string, schema models.PhaseSchema) (models.PhaseSchema, error) {
	if f.putHook != nil {
		f.putHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, schema.Clone())
	if f.putErr != nil {
		return models.PhaseSchema{}, f.putErr
	}
	out := schema.Clone()
	for i := range out.Phases {
		out.Phases[i].ID = "phase-" + out.Phases[i].Name
		n := i + 1
		out.Phases[i].PhaseNumber = &n
	}
	f.schema = out.Clone()
	return out, nil
}

func (f *fakeAPI) Login(context.Context, models.Credentials) (*models.AuthResponse, error) {
	return f.authRsp, f.authErr
}

func (f *fakeAPI) Register(context.Context, models.RegisterRequest) (*models.AuthResponse, error) {
	return f.authRsp, f.authErr
}

func (f *fakeAPI) Refresh(context.Context, string) (*models.RefreshResponse, error) {
	return f.refreshRsp, f.authErr
}

func (f *fakeAPI) Me(context.Context, string) (*models.User, error) {
	f.meCalls++
	return f.me, f.authErr
}

func (f *fakeAPI) Formats(context.Context, string) ([]models.TournamentFormat, error) {
	return f.formats, nil
}

func (f *fakeAPI) Tournaments(context.Context, string, int) (*models.TournamentsPage, error) {
	return &models.TournamentsPage{}, f.writeErr
}

func (f *fakeAPI) Tournament(_ context.Context, _ string, id string) (*models.Tournament, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &models.Tournament{ID: id}, nil
}

func (f *fakeAPI) CreateTournament(_ context.Context, _ string, req models.CreateTournamentRequest) (*models.Tournament, error) {
	f.created = append(f.created, req)
	return &models.Tournament{ID: "t-1", Name: req.Name, Format: req.Format}, nil
}

func (f *fakeAPI) Phases(context.Context, string, string) ([]models.Phase, error) {
	return f.schema.Clone().Phases, nil
}

func (f *fakeAPI) CreatePhase(_ context.Context, _ string, _ string, req models.PhaseRequest) (*models.Phase, error) {
	f.phaseReqs = append(f.phaseReqs, req)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	p := req.Phase()
	p.ID = "phase-1"
	return &p, nil
}

func (f *fakeAPI) UpdatePhase(_ context.Context, _ string, _ string, phaseID string, req models.PhaseRequest) (*models.Phase, error) {
	f.phaseReqs = append(f.phaseReqs, req)
	p := req.Phase()
	p.ID = phaseID
	return &p, nil
}

func (f *fakeAPI) GeneratePhaseFixtures(context.Context, string, string, string) (*models.MessageResponse, error) {
	return &models.MessageResponse{Message: "ok"}, nil
}

func (f *fakeAPI) AddTeam(context.Context, string, string, string) (*models.MessageResponse, error) {
	return &models.MessageResponse{Message: "ok"}, f.writeErr
}

func (f *fakeAPI) AddTeamsBulk(_ context.Context, _ string, _ string, ids []string) (*models.MessageResponse, error) {
	f.bulk = ids
	return &models.MessageResponse{Message: "ok"}, nil
}

func (f *fakeAPI) RemoveTeam(context.Context, string, string, string) (*models.MessageResponse, error) {
	return &models.MessageResponse{Message: "ok"}, f.writeErr
}

func (f *fakeAPI) Fixtures(context.Context, string, string) (*models.FixturesResponse, error) {
	return &models.FixturesResponse{}, nil
}

func (f *fakeAPI) GenerateFixtures(context.Context, string, string) (*models.MessageResponse, error) {
	return &models.MessageResponse{Message: "ok"}, nil
}

func (f *fakeAPI) Teams(context.Context, string, bool) ([]models.Team, error) {
	return nil, f.writeErr
}

func (f *fakeAPI) Team(_ context.Context, _ string, id string) (*models.Team, error) {
	return &models.Team{ID: id}, f.writeErr
}

func (f *fakeAPI) CreateTeam(_ context.Context, _ string, req models.CreateTeamRequest) (*models.Team, error) {
	return &models.Team{ID: "team-1", Name: req.Name}, f.writeErr
}

func (f *fakeAPI) CreatePlayer(_ context.Context, _ string, req models.CreatePlayerRequest) (*models.Player, error) {
	return &models.Player{ID: "player-1", FirstName: req.FirstName}, f.writeErr
}

func (f *fakeAPI) ImportPlayers(_ context.Context, _ string, file *models.FileUpload, fields map[string]string) (*models.PlayerImportResult, error) {
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, err
	}
	f.imports = append(f.imports, string(data))
	f.importFields = fields
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &models.PlayerImportResult{Message: "imported", Players: []models.Player{{ID: "p1"}, {ID: "p2"}}}, nil
}

func (f *fakeAPI) PlayerTemplate(context.Context, string) (*models.Download, error) {
	return &models.Download{ContentType: "text/csv", Body: []byte("first_name,last_name\n")}, nil
}

func (f *fakeAPI) ScheduleMatch(_ context.Context, _ string, matchID string, req models.ScheduleMatchRequest) (*models.Match, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &models.Match{ID: matchID, Status: models.MatchStatusScheduled, MatchDate: &req.MatchDate}, nil
}

func (f *fakeAPI) RegisterLineup(context.Context, string, string, models.RegisterLineupRequest) (*models.MessageResponse, error) {
	return &models.MessageResponse{Message: "ok"}, f.writeErr
}

func (f *fakeAPI) Lineups(context.Context, string, string) (*models.MatchLineups, error) {
	return &models.MatchLineups{}, nil
}

func (f *fakeAPI) AddEvent(_ context.Context, _ string, _ string, req models.MatchEventRequest) (*models.MatchEvent, error) {
	f.events = append(f.events, req)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &models.MatchEvent{ID: "ev-1", Type: req.Type, Player: models.EventPlayer{ID: req.PlayerID}}, nil
}

func (f *fakeAPI) Events(context.Context, string, string) ([]models.MatchEvent, error) {
	return nil, nil
}

func (f *fakeAPI) AddSubstitution(_ context.Context, _ string, _ string, req models.SubstitutionRequest) (*models.MatchEvent, error) {
	return &models.MatchEvent{ID: "ev-2", Type: models.EventSubstitution, Minute: req.Minute}, f.writeErr
}

// fakeUploader - хранилище в памяти.
type fakeUploader struct {
	err     error
	objects map[string][]byte
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if u.objects == nil {
		u.objects = make(map[string][]byte)
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string { return "https://files.example.com/" + key }

type recordedBroadcast struct {
	room    string
	msgType string
	payload any
}

type fakeHub struct {
	sent []recordedBroadcast
}

func (h *fakeHub) BroadcastToRoom(room, msgType string, payload any) {
	h.sent = append(h.sent, recordedBroadcast{room: room, msgType: msgType, payload: payload})
}
