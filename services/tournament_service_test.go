package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/phases"
)

func TestCreatePhaseSendsWireForm(t *testing.T) {
	api := newFakeAPI()
	svc := NewTournamentService(api, quietLogger())

	_, err := svc.CreatePhase(context.Background(), "tok", "t-1", models.PhaseRequest{
		Name:         " Knockout ",
		Type:         models.PhaseTypeSingleElimination,
		HomeAway:     true,
		TeamsAdvance: ptr(-1),
		Config:       models.PhaseConfig{"seeded": true},
	})
	if err != nil {
		t.Fatalf("create phase: %v", err)
	}
	req := api.phaseReqs[0]
	if req.Name != "Knockout" {
		t.Fatalf("name: expected = %q, got = %q", "Knockout", req.Name)
	}
	if req.HomeAway {
		t.Fatalf("home_away: expected = false, got = true")
	}
	if req.TeamsAdvance != nil {
		t.Fatalf("teams_advance: expected = nil, got = %v", *req.TeamsAdvance)
	}
	if req.Config["seeded"] != true {
		t.Fatalf("config: got = %v", req.Config)
	}
}

func TestCreatePhaseValidation(t *testing.T) {
	api := newFakeAPI()
	svc := NewTournamentService(api, quietLogger())

	_, err := svc.CreatePhase(context.Background(), "tok", "t-1", models.PhaseRequest{
		Name: "Groups", Type: models.PhaseTypeGroups, GroupsCount: ptr(4),
	})
	if !errors.Is(err, phases.ErrInvalidConfig) {
		t.Fatalf("expected = %v, got = %v", phases.ErrInvalidConfig, err)
	}
	if fields := phases.FieldErrors(err); fields["teams_per_group"] == "" {
		t.Fatalf("field errors: got = %v", fields)
	}
	if len(api.phaseReqs) != 0 {
		t.Fatalf("request sent for invalid phase")
	}

	_, err = svc.UpdatePhase(context.Background(), "tok", "t-1", "p-1", models.PhaseRequest{Name: "X", Type: "swiss"})
	if !errors.Is(err, phases.ErrUnknownType) {
		t.Fatalf("expected = %v, got = %v", phases.ErrUnknownType, err)
	}
}

func TestCreatePhaseRegistryUnavailable(t *testing.T) {
	api := newFakeAPI()
	api.typesErr = errTransport
	svc := NewTournamentService(api, quietLogger())

	_, err := svc.CreatePhase(context.Background(), "tok", "t-1", models.PhaseRequest{Name: "League", Type: models.PhaseTypeRoundRobin})
	var fe *phases.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *phases.FetchError, got = %v", err)
	}
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected = %v, got = %v", ErrRemoteUnavailable, err)
	}
}

func TestCreateTournament(t *testing.T) {
	api := newFakeAPI()
	api.formats = []models.TournamentFormat{
		{Value: "league", RequiredParams: []string{"home_away"}},
		{Value: "groups_knockout", RequiredParams: []string{"groups", "teams_per_group"}},
	}
	svc := NewTournamentService(api, quietLogger())
	ctx := context.Background()

	tests := []struct {
		name  string
		req   models.CreateTournamentRequest
		field string
	}{
		{"missing name", models.CreateTournamentRequest{StartDate: "2026-05-01", Format: "league"}, "name"},
		{"bad date", models.CreateTournamentRequest{Name: "Cup", StartDate: "01/05/2026", Format: "league"}, "start_date"},
		{"unknown format", models.CreateTournamentRequest{Name: "Cup", StartDate: "2026-05-01", Format: "swiss"}, "format"},
		{"missing param", models.CreateTournamentRequest{Name: "Cup", StartDate: "2026-05-01", Format: "groups_knockout", Groups: ptr(4)}, "teams_per_group"},
		{"zero param", models.CreateTournamentRequest{Name: "Cup", StartDate: "2026-05-01", Format: "groups_knockout", Groups: ptr(0)}, "groups"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "tok", tt.req)
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Fatalf("expected field error on %s, got = %v", tt.field, err)
			}
		})
	}

	got, err := svc.Create(ctx, "tok", models.CreateTournamentRequest{Name: " Cup ", StartDate: "2026-05-01", Format: "league"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Name != "Cup" || len(api.created) != 1 {
		t.Fatalf("created: got = %+v", got)
	}
}

func TestAddTeamsBulkDeduplicates(t *testing.T) {
	api := newFakeAPI()
	svc := NewTournamentService(api, quietLogger())

	if _, err := svc.AddTeamsBulk(context.Background(), "tok", "t-1", []string{"a", " b ", "a", ""}); err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if len(api.bulk) != 2 || api.bulk[0] != "a" || api.bulk[1] != "b" {
		t.Fatalf("ids: got = %v", api.bulk)
	}
	if _, err := svc.AddTeamsBulk(context.Background(), "tok", "t-1", []string{" "}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("empty: expected = %v, got = %v", ErrValidationFailed, err)
	}
}

func TestRemoteErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrSessionExpired},
		{http.StatusForbidden, ErrForbiddenOperation},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnprocessableEntity, ErrValidationFailed},
		{http.StatusInternalServerError, ErrRemoteUnavailable},
	}
	for _, tt := range tests {
		api := newFakeAPI()
		api.writeErr = apiError(tt.status, "boom")
		_, err := NewTournamentService(api, quietLogger()).Get(context.Background(), "tok", "t-1")
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: expected = %v, got = %v", tt.status, tt.want, err)
		}
	}
}
