package phases

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/Dosada05/tournament-admin/models"
)

func testRegistry() *Registry {
	return NewRegistry([]models.PhaseType{
		{
			Value:            models.PhaseTypeRoundRobin,
			Label:            "Round robin",
			SupportsHomeAway: true,
			RequiredFields:   []string{"name", "type"},
			OptionalFields:   []string{"home_away", "teams_advance"},
		},
		{
			Value:            models.PhaseTypeSingleElimination,
			Label:            "Single elimination",
			SupportsHomeAway: false,
			RequiredFields:   []string{"name", "type"},
			OptionalFields:   []string{"teams_advance"},
		},
		{
			Value:            models.PhaseTypeGroups,
			Label:            "Groups",
			SupportsHomeAway: true,
			RequiredFields:   []string{"name", "type", "groups_count", "teams_per_group"},
			OptionalFields:   []string{"home_away", "teams_advance"},
			ConfigOptions:    map[string]string{"rounds_per_group": "Rounds per group"},
		},
	})
}

func ptr(n int) *int { return &n }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSource struct {
	types []models.PhaseType
	err   error
	calls int
}

func (s *stubSource) PhaseTypes(context.Context) ([]models.PhaseType, error) {
	s.calls++
	return s.types, s.err
}

var errTransport = errors.New("dial tcp: connection refused")
