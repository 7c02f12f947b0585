package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-admin/models"
	"github.com/Dosada05/tournament-admin/phases"
	"github.com/Dosada05/tournament-admin/services"
)

// EditorHandler - HTTP обвязка редактора схемы турнира.
type EditorHandler struct {
	editors services.EditorService
}

func NewEditorHandler(es services.EditorService) *EditorHandler {
	return &EditorHandler{editors: es}
}

// respond отдаёт вид редактора. При ошибке вид кладётся рядом с ней, чтобы форма
// могла показать черновик с ошибками полей.
func (h *EditorHandler) respond(w http.ResponseWriter, r *http.Request, status int, view *services.EditorView, err error) {
	if err != nil {
		code, message := errorStatus(err)
		if code == http.StatusInternalServerError || view == nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		writeEnvelope(w, r, code, jsonResponse{"error": message, "editor": view})
		return
	}
	if err := writeJSON(w, status, jsonResponse{"editor": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// do выполняет операцию над редактором из URL от имени текущей сессии.
func (h *EditorHandler) do(w http.ResponseWriter, r *http.Request, op func(*phases.Editor) error) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.editors.Do(s.ID, chi.URLParam(r, "editorID"), op)
	h.respond(w, r, http.StatusOK, view, err)
}

// indexed то же, что do, для операций над фазой с индексом из URL.
func (h *EditorHandler) indexed(w http.ResponseWriter, r *http.Request, op func(*phases.Editor, int) error) {
	i, err := getIndexFromURL(r, "index")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.do(w, r, func(e *phases.Editor) error { return op(e, i) })
}

func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.editors.Open(r.Context(), s, chi.URLParam(r, "tournamentID"))
	h.respond(w, r, http.StatusCreated, view, err)
}

func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.editors.Get(s.ID, chi.URLParam(r, "editorID"))
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.editors.Close(s.ID, chi.URLParam(r, "editorID")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EditorHandler) ReloadRegistry(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.editors.ReloadRegistry(r.Context(), s, chi.URLParam(r, "editorID"))
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.editors.Save(r.Context(), s, chi.URLParam(r, "editorID"))
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *EditorHandler) BeginAdd(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, (*phases.Editor).BeginAdd)
}

func (h *EditorHandler) CancelAdd(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, (*phases.Editor).CancelAdd)
}

// CommitAdd принимает фазу в теле. Без тела фиксируется накопленный черновик.
func (h *EditorHandler) CommitAdd(w http.ResponseWriter, r *http.Request) {
	var p models.Phase
	present, err := readOptionalJSON(w, r, &p)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.do(w, r, func(e *phases.Editor) error {
		if !present {
			d, err := draftOf(e)
			if err != nil {
				return err
			}
			p = d
		}
		return e.CommitAdd(p)
	})
}

// UpdateDraft применяет правки полей черновика вида {"field": value}.
func (h *EditorHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := readJSON(w, r, &fields); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h.do(w, r, func(e *phases.Editor) error {
		var errs phases.ValidationErrors
		for _, k := range keys {
			if err := e.SetDraftField(k, fields[k]); err != nil {
				var ve *phases.ValidationError
				if !errors.As(err, &ve) {
					return err
				}
				errs = append(errs, ve)
			}
		}
		if len(errs) > 0 {
			return errs
		}
		return nil
	})
}

func (h *EditorHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	h.indexed(w, r, (*phases.Editor).BeginEdit)
}

// CommitEdit принимает фазу в теле. Без тела фиксируется накопленный черновик.
func (h *EditorHandler) CommitEdit(w http.ResponseWriter, r *http.Request) {
	var p models.Phase
	present, err := readOptionalJSON(w, r, &p)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.indexed(w, r, func(e *phases.Editor, i int) error {
		if !present {
			d, err := draftOf(e)
			if err != nil {
				return err
			}
			p = d
		}
		return e.CommitEdit(i, p)
	})
}

func (h *EditorHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.indexed(w, r, (*phases.Editor).CancelEdit)
}

func (h *EditorHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.indexed(w, r, (*phases.Editor).Remove)
}

func (h *EditorHandler) MoveUp(w http.ResponseWriter, r *http.Request) {
	h.indexed(w, r, (*phases.Editor).MoveUp)
}

func (h *EditorHandler) MoveDown(w http.ResponseWriter, r *http.Request) {
	h.indexed(w, r, (*phases.Editor).MoveDown)
}

func draftOf(e *phases.Editor) (models.Phase, error) {
	d, ok := e.Draft()
	if !ok {
		return models.Phase{}, fmt.Errorf("no open draft in state %s: %w", e.State(), phases.ErrInvalidTransition)
	}
	return d, nil
}
