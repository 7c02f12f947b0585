package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-admin/apiclient"
	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/phases"
	"github.com/Dosada05/tournament-admin/session"
)

const registryUnavailableMessage = "phase types could not be loaded"

// EditorView - состояние редактора для фронтенда.
type EditorView struct {
	phases.View
	EditorID          string `json:"editor_id"`
	TournamentID      string `json:"tournament_id"`
	RegistryAvailable bool   `json:"registry_available"`
	RegistryError     string `json:"registry_error,omitempty"`
}

// EditorService держит открытые редакторы схем. Каждый редактор принадлежит сессии, которая его открыла.
type EditorService interface {
	Open(ctx context.Context, s *session.Session, tournamentID string) (*EditorView, error)
	Get(owner, editorID string) (*EditorView, error)
	// Do выполняет op под блокировкой редактора. При ошибке op вид всё равно возвращается.
	Do(owner, editorID string, op func(*phases.Editor) error) (*EditorView, error)
	Save(ctx context.Context, s *session.Session, editorID string) (*EditorView, error)
	ReloadRegistry(ctx context.Context, s *session.Session, editorID string) (*EditorView, error)
	Close(owner, editorID string) error
	CloseOwner(owner string) int
	PurgeIdle(now time.Time) int
}

type editorEntry struct {
	mu           sync.Mutex
	id           string
	owner        string
	tournamentID string
	editor       *phases.Editor
	registryErr  string
	lastUsed     time.Time
}

func (e *editorEntry) view() *EditorView {
	return &EditorView{
		View:              e.editor.View(),
		EditorID:          e.id,
		TournamentID:      e.tournamentID,
		RegistryAvailable: e.registryErr == "",
		RegistryError:     e.registryErr,
	}
}

type editorService struct {
	api     SchemaAPI
	log     *slog.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	editors map[string]*editorEntry
}

func NewEditorService(api SchemaAPI, idleTTL time.Duration, log *slog.Logger) EditorService {
	return &editorService{
		api:     api,
		log:     log,
		idleTTL: idleTTL,
		now:     time.Now,
		editors: make(map[string]*editorEntry),
	}
}

type phaseTypeAPI interface {
	PhaseTypes(ctx context.Context, token string) ([]models.PhaseType, error)
}

// tokenSource привязывает токен сессии к загрузке каталога типов фаз.
type tokenSource struct {
	api   phaseTypeAPI
	token string
}

func (t tokenSource) PhaseTypes(ctx context.Context) ([]models.PhaseType, error) {
	return t.api.PhaseTypes(ctx, t.token)
}

// loadRegistry не считает недоступный каталог фатальным: редактор получает пустой реестр.
func (s *editorService) loadRegistry(ctx context.Context, token string) (*phases.Registry, string, error) {
	reg, err := phases.Load(ctx, tokenSource{api: s.api, token: token})
	if err == nil {
		return reg, "", nil
	}
	if errors.Is(mapAPIError(err), ErrSessionExpired) {
		return nil, "", ErrSessionExpired
	}
	s.log.Warn("phase type registry unavailable", slog.Any("error", err))
	return phases.NewRegistry(nil), registryUnavailableMessage, nil
}

func (s *editorService) Open(ctx context.Context, sess *session.Session, tournamentID string) (*EditorView, error) {
	if tournamentID == "" {
		return nil, &FieldError{Field: "tournament_id", Message: "required"}
	}

	var (
		reg         *phases.Registry
		registryErr string
		schema      models.PhaseSchema
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reg, registryErr, err = s.loadRegistry(gctx, sess.Token)
		return err
	})
	g.Go(func() error {
		sc, err := s.api.Schema(gctx, sess.Token, tournamentID)
		if apiclient.StatusOf(err) == http.StatusNotFound {
			schema = models.PhaseSchema{Phases: []models.Phase{}}
			return nil
		}
		if err != nil {
			return fmt.Errorf("load schema of tournament %s: %w", tournamentID, mapAPIError(err))
		}
		schema = sc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entry := &editorEntry{
		id:           uuid.NewString(),
		owner:        sess.ID,
		tournamentID: tournamentID,
		editor:       phases.NewEditor(schema, reg, s.log.With(slog.String("tournament_id", tournamentID))),
		registryErr:  registryErr,
		lastUsed:     s.now(),
	}
	s.mu.Lock()
	s.editors[entry.id] = entry
	s.mu.Unlock()

	s.log.Info("schema editor opened",
		slog.String("editor_id", entry.id),
		slog.String("tournament_id", tournamentID),
		slog.Int("phases", len(schema.Phases)))
	return entry.view(), nil
}

func (s *editorService) lookup(owner, editorID string) (*editorEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.editors[editorID]
	if !ok || entry.owner != owner {
		return nil, ErrEditorNotFound
	}
	return entry, nil
}

func (s *editorService) Get(owner, editorID string) (*EditorView, error) {
	entry, err := s.lookup(owner, editorID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastUsed = s.now()
	return entry.view(), nil
}

func (s *editorService) Do(owner, editorID string, op func(*phases.Editor) error) (*EditorView, error) {
	entry, err := s.lookup(owner, editorID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastUsed = s.now()
	opErr := op(entry.editor)
	return entry.view(), opErr
}

// Save отправляет текущую схему целиком. Во время запроса редактор не заблокирован,
// правки, сделанные за это время, перетираются ответом сервера.
func (s *editorService) Save(ctx context.Context, sess *session.Session, editorID string) (*EditorView, error) {
	entry, err := s.lookup(sess.ID, editorID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	wire := phases.WireSchema(entry.editor.Schema(), entry.editor.Registry())
	entry.lastUsed = s.now()
	entry.mu.Unlock()

	saved, err := s.api.PutSchema(ctx, sess.Token, entry.tournamentID, wire)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err != nil {
		pe := newPersistError(err)
		s.log.Error("failed to save schema",
			slog.String("editor_id", entry.id),
			slog.String("tournament_id", entry.tournamentID),
			slog.Any("error", err))
		return entry.view(), pe
	}
	entry.editor.Replace(saved)
	s.log.Info("schema saved",
		slog.String("editor_id", entry.id),
		slog.String("tournament_id", entry.tournamentID),
		slog.Int("phases", len(saved.Phases)))
	return entry.view(), nil
}

func (s *editorService) ReloadRegistry(ctx context.Context, sess *session.Session, editorID string) (*EditorView, error) {
	entry, err := s.lookup(sess.ID, editorID)
	if err != nil {
		return nil, err
	}
	reg, registryErr, err := s.loadRegistry(ctx, sess.Token)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastUsed = s.now()
	// Неудачная загрузка не заменяет ранее загруженный каталог.
	if registryErr != "" && entry.editor.Registry().Len() > 0 {
		return entry.view(), nil
	}
	entry.editor.SetRegistry(reg)
	entry.registryErr = registryErr
	return entry.view(), nil
}

func (s *editorService) Close(owner, editorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.editors[editorID]
	if !ok || entry.owner != owner {
		return ErrEditorNotFound
	}
	delete(s.editors, editorID)
	return nil
}

// CloseOwner закрывает все редакторы сессии. Вызывается при выходе.
func (s *editorService) CloseOwner(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, entry := range s.editors {
		if entry.owner == owner {
			delete(s.editors, id)
			n++
		}
	}
	return n
}

func (s *editorService) PurgeIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, entry := range s.editors {
		entry.mu.Lock()
		idle := now.Sub(entry.lastUsed) >= s.idleTTL
		entry.mu.Unlock()
		if idle {
			delete(s.editors, id)
			n++
		}
	}
	if n > 0 {
		s.log.Info("idle schema editors purged", slog.Int("count", n))
	}
	return n
}
