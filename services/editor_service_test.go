package services

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/phases"
)

func newTestEditorService(api *fakeAPI) *editorService {
	return NewEditorService(api, 30*time.Minute, quietLogger()).(*editorService)
}

func addOp(p models.Phase) func(*phases.Editor) error {
	return func(e *phases.Editor) error {
		if err := e.BeginAdd(); err != nil {
			return err
		}
		return e.CommitAdd(p)
	}
}

func openEditor(t *testing.T, svc EditorService, owner string) *EditorView {
	t.Helper()
	v, err := svc.Open(context.Background(), testSession(owner), "t-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return v
}

func TestEditorOpenEmptySchema(t *testing.T) {
	api := newFakeAPI()
	api.schemaErr = apiError(http.StatusNotFound, "schema not found")
	svc := newTestEditorService(api)

	v := openEditor(t, svc, "s1")
	if v.State != phases.StateEmpty {
		t.Fatalf("state: expected = %v, got = %v", phases.StateEmpty, v.State)
	}
	if len(v.Phases) != 0 {
		t.Fatalf("phases: expected = 0, got = %v", len(v.Phases))
	}
	if !v.RegistryAvailable || len(v.PhaseTypes) != 3 {
		t.Fatalf("registry: expected available with 3 types, got = %v %v", v.RegistryAvailable, len(v.PhaseTypes))
	}
	if v.EditorID == "" || v.TournamentID != "t-1" {
		t.Fatalf("ids: got = %q %q", v.EditorID, v.TournamentID)
	}
	if len(api.tokens) != 1 || api.tokens[0] != "token-s1" {
		t.Fatalf("token: expected = [token-s1], got = %v", api.tokens)
	}
}

func TestEditorOpenRegistryUnavailable(t *testing.T) {
	api := newFakeAPI()
	api.typesErr = errTransport
	svc := newTestEditorService(api)

	v := openEditor(t, svc, "s1")
	if v.RegistryAvailable {
		t.Fatalf("registry_available: expected = false, got = true")
	}
	if v.RegistryError == "" {
		t.Fatalf("registry_error: expected a message")
	}

	// Без каталога ни один тип не проходит проверку.
	v, err := svc.Do("s1", v.EditorID, addOp(models.Phase{Name: "League", Type: models.PhaseTypeRoundRobin}))
	if !errors.Is(err, phases.ErrUnknownType) {
		t.Fatalf("commit: expected = %v, got = %v", phases.ErrUnknownType, err)
	}
	if v.State != phases.StateAddingPhase {
		t.Fatalf("state: expected = %v, got = %v", phases.StateAddingPhase, v.State)
	}

	api.mu.Lock()
	api.typesErr = nil
	api.mu.Unlock()
	v, err = svc.ReloadRegistry(context.Background(), testSession("s1"), v.EditorID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !v.RegistryAvailable || len(v.PhaseTypes) != 3 {
		t.Fatalf("reload: expected available registry, got = %v %v", v.RegistryAvailable, len(v.PhaseTypes))
	}
	if v.DraftType == nil || v.DraftType.Value != models.PhaseTypeRoundRobin {
		t.Fatalf("draft type after reload: got = %v", v.DraftType)
	}
}

func TestEditorOpenSessionExpired(t *testing.T) {
	api := newFakeAPI()
	api.schemaErr = apiError(http.StatusUnauthorized, "Unauthenticated.")
	svc := newTestEditorService(api)

	_, err := svc.Open(context.Background(), testSession("s1"), "t-1")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("open: expected = %v, got = %v", ErrSessionExpired, err)
	}
}

func TestEditorOwnerScoped(t *testing.T) {
	svc := newTestEditorService(newFakeAPI())
	v := openEditor(t, svc, "s1")

	if _, err := svc.Get("s2", v.EditorID); !errors.Is(err, ErrEditorNotFound) {
		t.Fatalf("foreign get: expected = %v, got = %v", ErrEditorNotFound, err)
	}
	if err := svc.Close("s2", v.EditorID); !errors.Is(err, ErrEditorNotFound) {
		t.Fatalf("foreign close: expected = %v, got = %v", ErrEditorNotFound, err)
	}
	if _, err := svc.Get("s1", v.EditorID); err != nil {
		t.Fatalf("own get: %v", err)
	}
	if n := svc.CloseOwner("s1"); n != 1 {
		t.Fatalf("close owner: expected = 1, got = %v", n)
	}
	if _, err := svc.Get("s1", v.EditorID); !errors.Is(err, ErrEditorNotFound) {
		t.Fatalf("get after close: expected = %v, got = %v", ErrEditorNotFound, err)
	}
}

func TestEditorSaveReplacesWithServerCopy(t *testing.T) {
	api := newFakeAPI()
	svc := newTestEditorService(api)
	sess := testSession("s1")
	v := openEditor(t, svc, "s1")

	if _, err := svc.Do("s1", v.EditorID, addOp(models.Phase{
		Name: " Groups ", Type: models.PhaseTypeGroups, GroupsCount: ptr(4), TeamsPerGroup: ptr(4),
	})); err != nil {
		t.Fatalf("add groups: %v", err)
	}
	if _, err := svc.Do("s1", v.EditorID, addOp(models.Phase{
		Name: "Final", Type: models.PhaseTypeSingleElimination, HomeAway: true, TeamsAdvance: ptr(0),
	})); err != nil {
		t.Fatalf("add final: %v", err)
	}

	v, err := svc.Save(context.Background(), sess, v.EditorID)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	sent := api.puts[0].Phases
	if sent[0].Name != "Groups" {
		t.Fatalf("sent name: expected = %q, got = %q", "Groups", sent[0].Name)
	}
	if sent[1].HomeAway {
		t.Fatalf("sent home_away for single elimination: expected = false, got = true")
	}
	if sent[1].TeamsAdvance != nil {
		t.Fatalf("sent teams_advance: expected = nil, got = %v", *sent[1].TeamsAdvance)
	}

	if len(v.Phases) != 2 || v.Phases[0].ID != "phase-Groups" || v.Phases[1].ID != "phase-Final" {
		t.Fatalf("server copy not applied: got = %+v", v.Phases)
	}
	if v.Phases[1].PhaseNumber == nil || *v.Phases[1].PhaseNumber != 2 {
		t.Fatalf("phase_number: got = %v", v.Phases[1].PhaseNumber)
	}
}

// Транспортная ошибка при сохранении не меняет локальную схему.
func TestEditorSaveTransportErrorKeepsSchema(t *testing.T) {
	api := newFakeAPI()
	api.putErr = errTransport
	svc := newTestEditorService(api)
	sess := testSession("s1")
	v := openEditor(t, svc, "s1")

	before, err := svc.Do("s1", v.EditorID, addOp(models.Phase{Name: "League", Type: models.PhaseTypeRoundRobin, HomeAway: true}))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	after, err := svc.Save(context.Background(), sess, v.EditorID)
	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("save: expected *PersistError, got = %v", err)
	}
	if pe.Message != genericPersistMessage {
		t.Fatalf("message: expected = %q, got = %q", genericPersistMessage, pe.Message)
	}
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("cause: expected = %v, got = %v", ErrRemoteUnavailable, err)
	}
	if !reflect.DeepEqual(before.Phases, after.Phases) {
		t.Fatalf("schema changed: expected = %+v, got = %+v", before.Phases, after.Phases)
	}

	api.putErr = nil
	if _, err := svc.Save(context.Background(), sess, v.EditorID); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestEditorSaveServerMessage(t *testing.T) {
	api := newFakeAPI()
	api.putErr = apiError(http.StatusUnprocessableEntity, "The schema.phases.0.name field is required.")
	svc := newTestEditorService(api)
	v := openEditor(t, svc, "s1")

	_, err := svc.Save(context.Background(), testSession("s1"), v.EditorID)
	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("save: expected *PersistError, got = %v", err)
	}
	if pe.Message != "The schema.phases.0.name field is required." {
		t.Fatalf("message: got = %q", pe.Message)
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("cause: expected = %v, got = %v", ErrValidationFailed, err)
	}
}

func TestEditorSaveUsesSnapshot(t *testing.T) {
	api := newFakeAPI()
	svc := newTestEditorService(api)
	sess := testSession("s1")
	v := openEditor(t, svc, "s1")
	id := v.EditorID

	if _, err := svc.Do("s1", id, addOp(models.Phase{Name: "League", Type: models.PhaseTypeRoundRobin})); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Правка во время запроса не блокируется и перетирается ответом сервера.
	api.putHook = func() {
		if _, err := svc.Do("s1", id, addOp(models.Phase{Name: "Late", Type: models.PhaseTypeRoundRobin})); err != nil {
			t.Errorf("add during save: %v", err)
		}
	}

	v, err := svc.Save(context.Background(), sess, id)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(api.puts[0].Phases) != 1 {
		t.Fatalf("sent phases: expected = 1, got = %v", len(api.puts[0].Phases))
	}
	if len(v.Phases) != 1 || v.Phases[0].Name != "League" {
		t.Fatalf("after save: got = %+v", v.Phases)
	}
}

func TestEditorPurgeIdle(t *testing.T) {
	svc := newTestEditorService(newFakeAPI())
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	stale := openEditor(t, svc, "s1")
	svc.now = func() time.Time { return start.Add(20 * time.Minute) }
	fresh := openEditor(t, svc, "s1")

	if n := svc.PurgeIdle(start.Add(35 * time.Minute)); n != 1 {
		t.Fatalf("purged: expected = 1, got = %v", n)
	}
	if _, err := svc.Get("s1", stale.EditorID); !errors.Is(err, ErrEditorNotFound) {
		t.Fatalf("stale: expected = %v, got = %v", ErrEditorNotFound, err)
	}
	if _, err := svc.Get("s1", fresh.EditorID); err != nil {
		t.Fatalf("fresh: %v", err)
	}
}

func TestEditorDoReturnsViewOnError(t *testing.T) {
	svc := newTestEditorService(newFakeAPI())
	v := openEditor(t, svc, "s1")

	v, err := svc.Do("s1", v.EditorID, addOp(models.Phase{Name: "  ", Type: models.PhaseTypeGroups}))
	if !errors.Is(err, phases.ErrMissingName) {
		t.Fatalf("commit: expected = %v, got = %v", phases.ErrMissingName, err)
	}
	if v == nil || v.Errors["name"] == "" || v.Errors["groups_count"] == "" {
		t.Fatalf("errors: got = %+v", v)
	}
	if v.Draft == nil {
		t.Fatalf("draft: expected to be kept")
	}
}
