package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

func (h *TournamentHandler) Formats(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	formats, err := h.tournamentService.Formats(r.Context(), s.Token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"formats": formats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List обрабатывает GET /tournaments?page=N
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			badRequestResponse(w, r, fmt.Errorf("invalid page parameter: %q", raw))
			return
		}
		page = p
	}

	rsp, err := h.tournamentService.List(r.Context(), s.Token, page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, rsp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	t, err := h.tournamentService.Get(r.Context(), s.Token, chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var input models.CreateTournamentRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.Create(r.Context(), s.Token, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// message отдаёт ответ API вида {"message": ...} как есть.
func message(w http.ResponseWriter, r *http.Request, status int, rsp *models.MessageResponse, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, status, rsp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var input models.AddTeamRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rsp, err := h.tournamentService.AddTeam(r.Context(), s.Token, chi.URLParam(r, "tournamentID"), input.TeamID)
	message(w, r, http.StatusCreated, rsp, err)
}

func (h *TournamentHandler) AddTeamsBulk(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var input models.AddTeamsBulkRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rsp, err := h.tournamentService.AddTeamsBulk(r.Context(), s.Token, chi.URLParam(r, "tournamentID"), input.TeamIDs)
	message(w, r, http.StatusCreated, rsp, err)
}

func (h *TournamentHandler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	rsp, err := h.tournamentService.RemoveTeam(r.Context(), s.Token, chi.URLParam(r, "tournamentID"), chi.URLParam(r, "teamID"))
	message(w, r, http.StatusOK, rsp, err)
}

func (h *TournamentHandler) Fixtures(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	rsp, err := h.tournamentService.Fixtures(r.Context(), s.Token, chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, rsp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	rsp, err := h.tournamentService.GenerateFixtures(r.Context(), s.Token, chi.URLParam(r, "tournamentID"))
	message(w, r, http.StatusCreated, rsp, err)
}

func (h *TournamentHandler) Phases(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	list, err := h.tournamentService.Phases(r.Context(), s.Token, chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if list == nil {
		list = []models.Phase{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"phases": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var input models.PhaseRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phase, err := h.tournamentService.CreatePhase(r.Context(), s.Token, chi.URLParam(r, "tournamentID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"phase": phase}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var input models.PhaseRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phase, err := h.tournamentService.UpdatePhase(r.Context(), s.Token,
		chi.URLParam(r, "tournamentID"), chi.URLParam(r, "phaseID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"phase": phase}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GeneratePhaseFixtures(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	rsp, err := h.tournamentService.GeneratePhaseFixtures(r.Context(), s.Token,
		chi.URLParam(r, "tournamentID"), chi.URLParam(r, "phaseID"))
	message(w, r, http.StatusCreated, rsp, err)
}
