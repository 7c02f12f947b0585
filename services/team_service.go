package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/storage"
)

const (
	importArchivePrefix = "imports/players"
	maxImportSize       = 10 << 20
)

type TeamService interface {
	List(ctx context.Context, token string, all bool) ([]models.Team, error)
	Get(ctx context.Context, token, id string) (*models.Team, error)
	Create(ctx context.Context, token string, req models.CreateTeamRequest) (*models.Team, error)
	CreatePlayer(ctx context.Context, token string, req models.CreatePlayerRequest) (*models.Player, error)
	ImportPlayers(ctx context.Context, token, teamID string, file *models.FileUpload) (*ImportResult, error)
	Template(ctx context.Context, token string) (*models.Download, error)
}

// ImportResult - ответ API на импорт и ключ архивной копии файла, если она сохранена.
type ImportResult struct {
	*models.PlayerImportResult
	ArchiveKey string `json:"archive_key,omitempty"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

type teamService struct {
	api      TeamAPI
	uploader storage.FileUploader
	log      *slog.Logger
	now      func() time.Time
}

// NewTeamService. uploader может быть nil, тогда файлы импорта не архивируются.
func NewTeamService(api TeamAPI, uploader storage.FileUploader, log *slog.Logger) TeamService {
	return &teamService{
		api:      api,
		uploader: uploader,
		log:      log,
		now:      time.Now,
	}
}

func (s *teamService) List(ctx context.Context, token string, all bool) ([]models.Team, error) {
	teams, err := s.api.Teams(ctx, token, all)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", mapAPIError(err))
	}
	return teams, nil
}

func (s *teamService) Get(ctx context.Context, token, id string) (*models.Team, error) {
	team, err := s.api.Team(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("get team %s: %w", id, mapAPIError(err))
	}
	return team, nil
}

func (s *teamService) Create(ctx context.Context, token string, req models.CreateTeamRequest) (*models.Team, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := requireFields(map[string]string{"name": req.Name}); err != nil {
		return nil, err
	}
	if req.Shield != nil {
		if _, err := GetExtensionFromContentType(req.Shield.ContentType); err != nil {
			return nil, &FieldError{Field: "shield", Message: ErrUnsupportedShield.Error()}
		}
	}

	team, err := s.api.CreateTeam(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("create team: %w", mapAPIError(err))
	}
	s.log.Info("team created", slog.String("team_id", team.ID), slog.String("name", team.Name))
	return team, nil
}

func (s *teamService) CreatePlayer(ctx context.Context, token string, req models.CreatePlayerRequest) (*models.Player, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := requireFields(map[string]string{
		"first_name":            req.FirstName,
		"last_name":             req.LastName,
		"identification_number": req.IdentificationNumber,
		"team_id":               req.TeamID,
	}); err != nil {
		return nil, err
	}
	if req.BirthDay != "" {
		if err := validateDate("birthDay", req.BirthDay); err != nil {
			return nil, err
		}
	}
	if req.Jersey < 0 {
		return nil, &FieldError{Field: "jersey", Message: "must not be negative"}
	}

	player, err := s.api.CreatePlayer(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", mapAPIError(err))
	}
	return player, nil
}

// ImportPlayers пересылает файл в API. Если хранилище настроено, копия файла
// сохраняется до пересылки; ошибка архивации только логируется. Если API
// отклонил файл, копия удаляется.
func (s *teamService) ImportPlayers(ctx context.Context, token, teamID string, file *models.FileUpload) (*ImportResult, error) {
	if file == nil || file.Content == nil {
		return nil, &FieldError{Field: "file", Message: "required"}
	}
	data, err := io.ReadAll(io.LimitReader(file.Content, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	if len(data) == 0 {
		return nil, &FieldError{Field: "file", Message: "file is empty"}
	}
	if len(data) > maxImportSize {
		return nil, &FieldError{Field: "file", Message: "file is too large"}
	}

	out := &ImportResult{}
	if s.uploader != nil {
		key := storage.ObjectKey(importArchivePrefix, file.Filename, s.now())
		res, err := s.uploader.Upload(ctx, key, file.ContentType, bytes.NewReader(data))
		if err != nil {
			s.log.Error("failed to archive player import",
				slog.String("key", key),
				slog.Any("error", err))
		} else {
			out.ArchiveKey = res.Key
			out.ArchiveURL = s.uploader.GetPublicURL(res.Key)
		}
	}

	var fields map[string]string
	if teamID = strings.TrimSpace(teamID); teamID != "" {
		fields = map[string]string{"team_id": teamID}
	}
	forward := &models.FileUpload{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Content:     bytes.NewReader(data),
	}
	rsp, err := s.api.ImportPlayers(ctx, token, forward, fields)
	if err != nil {
		s.discardArchive(ctx, out.ArchiveKey)
		return nil, fmt.Errorf("import players: %w", mapAPIError(err))
	}
	out.PlayerImportResult = rsp
	s.log.Info("players imported",
		slog.Int("count", len(rsp.Players)),
		slog.String("archive_key", out.ArchiveKey))
	return out, nil
}

// discardArchive удаляет архивную копию файла, который API не принял.
func (s *teamService) discardArchive(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete rejected import archive",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

func (s *teamService) Template(ctx context.Context, token string) (*models.Download, error) {
	d, err := s.api.PlayerTemplate(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("player template: %w", mapAPIError(err))
	}
	return d, nil
}
