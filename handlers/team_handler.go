package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/services"
)

const maxMultipartMemory = 32 << 20

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: ts,
	}
}

// List обрабатывает GET /teams[?all=true]
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	all := false
	if raw := r.URL.Query().Get("all"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid all parameter: %q", raw))
			return
		}
		all = v
	}

	teams, err := h.teamService.List(r.Context(), s.Token, all)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	team, err := h.teamService.Get(r.Context(), s.Token, chi.URLParam(r, "teamID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// formUpload достаёт необязательный файл из multipart формы.
func formUpload(r *http.Request, field string) (*models.FileUpload, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return uploadFrom(file, header), func() { file.Close() }, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *models.FileUpload {
	return &models.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
}

// Create обрабатывает POST /teams (multipart: name, shield)
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	shield, closeFile, err := formUpload(r, "shield")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer closeFile()

	team, err := h.teamService.Create(r.Context(), s.Token, models.CreateTeamRequest{
		Name:   r.FormValue("name"),
		Shield: shield,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var input models.CreatePlayerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.teamService.CreatePlayer(r.Context(), s.Token, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ImportPlayers обрабатывает POST /players/import (multipart: file, team_id)
func (h *TeamHandler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	file, closeFile, err := formUpload(r, "file")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer closeFile()

	teamID := strings.TrimSpace(r.FormValue("team_id"))
	rsp, err := h.teamService.ImportPlayers(r.Context(), s.Token, teamID, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, rsp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Template отдаёт шаблон импорта игроков как есть.
func (h *TeamHandler) Template(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	d, err := h.teamService.Template(r.Context(), s.Token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if d.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", d.ContentDisposition)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(d.Body); err != nil {
		slog.Default().Warn("failed to write template",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
}
