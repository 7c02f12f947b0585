package phases

import (
	"errors"
	"testing"

	"github.com/Dosada05/tournament-admin/models"
)

func TestValidatePhase(t *testing.T) {
	reg := testRegistry()
	tests := []struct {
		name  string
		phase models.Phase
		want  error
		field string
	}{
		{
			name:  "valid round robin",
			phase: models.Phase{Name: "League", Type: models.PhaseTypeRoundRobin},
		},
		{
			name:  "blank name",
			phase: models.Phase{Name: "   ", Type: models.PhaseTypeRoundRobin},
			want:  ErrMissingName,
			field: models.FieldName,
		},
		{
			name:  "unknown type",
			phase: models.Phase{Name: "Swiss", Type: "swiss"},
			want:  ErrUnknownType,
			field: models.FieldType,
		},
		{
			name:  "no type",
			phase: models.Phase{Name: "Nothing"},
			want:  ErrUnknownType,
			field: models.FieldType,
		},
		{
			name:  "groups missing required counts",
			phase: models.Phase{Name: "Groups", Type: models.PhaseTypeGroups, GroupsCount: ptr(4)},
			want:  ErrInvalidConfig,
			field: models.FieldTeamsPerGroup,
		},
		{
			name:  "required count as empty string",
			phase: models.Phase{Name: "Groups", Type: models.PhaseTypeGroups, GroupsCount: ptr(4), Config: models.PhaseConfig{"teams_per_group": ""}},
			want:  ErrInvalidConfig,
			field: models.FieldTeamsPerGroup,
		},
		{
			name:  "required count from config",
			phase: models.Phase{Name: "Groups", Type: models.PhaseTypeGroups, Config: models.PhaseConfig{"groups_count": 4.0, "teams_per_group": "4"}},
		},
		{
			name:  "zero optional number is absent",
			phase: models.Phase{Name: "Cup", Type: models.PhaseTypeSingleElimination, TeamsAdvance: ptr(0)},
		},
		{
			name:  "negative config number is absent",
			phase: models.Phase{Name: "Cup", Type: models.PhaseTypeSingleElimination, Config: models.PhaseConfig{"teams_advance": -2.0}},
		},
		{
			name:  "fractional number",
			phase: models.Phase{Name: "Cup", Type: models.PhaseTypeSingleElimination, Config: models.PhaseConfig{"teams_advance": 2.5}},
			want:  ErrInvalidConfig,
			field: models.FieldTeamsAdvance,
		},
		{
			name:  "config option text",
			phase: models.Phase{Name: "Groups", Type: models.PhaseTypeGroups, GroupsCount: ptr(2), TeamsPerGroup: ptr(4), Config: models.PhaseConfig{"rounds_per_group": "two"}},
			want:  ErrInvalidConfig,
			field: "rounds_per_group",
		},
		{
			name:  "home away as text",
			phase: models.Phase{Name: "League", Type: models.PhaseTypeRoundRobin, Config: models.PhaseConfig{"home_away": "maybe"}},
			want:  ErrInvalidConfig,
			field: models.FieldHomeAway,
		},
		{
			name:  "home away on unsupported type",
			phase: models.Phase{Name: "Cup", Type: models.PhaseTypeSingleElimination, HomeAway: true},
		},
		{
			name:  "nested config value",
			phase: models.Phase{Name: "Cup", Type: models.PhaseTypeSingleElimination, Config: models.PhaseConfig{"seeding": []any{1, 2}}},
			want:  ErrInvalidConfig,
			field: "seeding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidatePhase(tt.phase, reg)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if _, ok := reg.FindByValue(res.Type.Value); !ok || res.Type.Value != tt.phase.Type {
					t.Fatalf("accepted phase must reference a registered type, got %q", res.Type.Value)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected = %v, got = %v", tt.want, err)
			}
			if _, ok := FieldErrors(err)[tt.field]; !ok {
				t.Fatalf("expected an error for field %q, got %v", tt.field, FieldErrors(err))
			}
		})
	}
}

func TestValidatePhaseCollectsAllErrors(t *testing.T) {
	_, err := ValidatePhase(models.Phase{Type: models.PhaseTypeGroups}, testRegistry())
	if !errors.Is(err, ErrMissingName) || !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected name and config errors, got %v", err)
	}
	fields := FieldErrors(err)
	for _, f := range []string{models.FieldName, models.FieldGroupsCount, models.FieldTeamsPerGroup} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing error for %q in %v", f, fields)
		}
	}
}

func TestValidatePhaseEmptyRegistry(t *testing.T) {
	_, err := ValidatePhase(models.Phase{Name: "League", Type: models.PhaseTypeRoundRobin}, nil)
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected unknown type with no registry, got %v", err)
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if FieldErrors(errTransport) != nil {
		t.Fatal("non validation errors must yield nil")
	}
	single := &ValidationError{Field: "x", Err: ErrReadOnlyField}
	if _, ok := FieldErrors(single)["x"]; !ok {
		t.Fatal("single validation error must be reported by field")
	}
}
