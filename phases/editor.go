package phases

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-admin/models"
)

var (
	ErrInvalidTransition = errors.New("operation is not allowed in the current editor state")
	ErrIndexOutOfRange   = errors.New("phase index out of range")
	ErrReadOnlyField     = errors.New("field is managed by the server or the editor")
)

// State - состояние редактора схемы.
type State int

const (
	StateEmpty State = iota
	StateEditing
	StateAddingPhase
	StateEditingPhase
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateAddingPhase:
		return "adding_phase"
	case StateEditingPhase:
		return "editing_phase"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Editor хранит единственную изменяемую копию схемы на время сессии редактирования.
// Editor не потокобезопасен: вызовы сериализует владелец.
type Editor struct {
	phases   []models.Phase
	registry *Registry
	log      *slog.Logger

	state     State
	draft     *models.Phase
	editIndex int
	snapshot  models.Phase
	errs      map[string]string
}

// NewEditor открывает сессию редактирования над копией schema.
func NewEditor(schema models.PhaseSchema, reg *Registry, log *slog.Logger) *Editor {
	if log == nil {
		log = slog.Default()
	}
	e := &Editor{
		phases:    schema.Clone().Phases,
		registry:  reg,
		log:       log,
		editIndex: -1,
	}
	e.settle()
	return e
}

func (e *Editor) State() State { return e.state }

// EditIndex возвращает индекс редактируемой фазы в состоянии EditingPhase.
func (e *Editor) EditIndex() (int, bool) {
	if e.state != StateEditingPhase {
		return 0, false
	}
	return e.editIndex, true
}

func (e *Editor) Schema() models.PhaseSchema {
	return models.PhaseSchema{Phases: e.phases}.Clone()
}

func (e *Editor) Len() int { return len(e.phases) }

func (e *Editor) Phase(i int) (models.Phase, error) {
	if err := e.checkIndex(i); err != nil {
		return models.Phase{}, err
	}
	return e.phases[i].Clone(), nil
}

func (e *Editor) Registry() *Registry { return e.registry }

// SetRegistry подменяет снимок реестра, например после повторной загрузки.
func (e *Editor) SetRegistry(reg *Registry) { e.registry = reg }

// Draft возвращает копию открытого черновика.
func (e *Editor) Draft() (models.Phase, bool) {
	if e.draft == nil {
		return models.Phase{}, false
	}
	return e.draft.Clone(), true
}

// BeginAdd открывает черновик новой фазы. Одновременно открыт только один черновик.
func (e *Editor) BeginAdd() error {
	if e.state != StateEmpty && e.state != StateEditing {
		return fmt.Errorf("begin add in state %s: %w", e.state, ErrInvalidTransition)
	}
	e.draft = &models.Phase{Config: models.PhaseConfig{}}
	e.errs = nil
	e.state = StateAddingPhase
	return nil
}

// CommitAdd проверяет фазу и добавляет её в конец схемы с order = len+1.
// Серверные поля новой фазы сбрасываются. При ошибке схема не меняется,
// черновик остаётся открытым с этой фазой.
func (e *Editor) CommitAdd(p models.Phase) error {
	if e.state != StateAddingPhase {
		return fmt.Errorf("commit add in state %s: %w", e.state, ErrInvalidTransition)
	}
	res, err := ValidatePhase(p, e.registry)
	if err != nil {
		e.keepDraft(p, err)
		return err
	}
	e.warnUnknown(p, res)

	q := p.Clone()
	q.Order = len(e.phases) + 1
	q.ID = ""
	q.PhaseNumber = nil
	q.IsActive = false
	q.IsCompleted = false
	q.MatchesCount = nil
	e.phases = append(e.phases, q)
	e.closeDraft()
	return nil
}

func (e *Editor) CancelAdd() error {
	if e.state != StateAddingPhase {
		return fmt.Errorf("cancel add in state %s: %w", e.state, ErrInvalidTransition)
	}
	e.closeDraft()
	return nil
}

// BeginEdit открывает фазу i на редактирование и запоминает её исходное значение.
func (e *Editor) BeginEdit(i int) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	if e.state != StateEditing {
		return fmt.Errorf("begin edit in state %s: %w", e.state, ErrInvalidTransition)
	}
	e.snapshot = e.phases[i].Clone()
	d := e.phases[i].Clone()
	if d.Config == nil {
		d.Config = models.PhaseConfig{}
	}
	e.draft = &d
	e.editIndex = i
	e.errs = nil
	e.state = StateEditingPhase
	return nil
}

// CommitEdit заменяет фазу i на месте. order и серверные поля всегда остаются
// от исходной фазы, order по позиции не пересчитывается.
func (e *Editor) CommitEdit(i int, p models.Phase) error {
	if err := e.checkEditing(i); err != nil {
		return err
	}
	res, err := ValidatePhase(p, e.registry)
	if err != nil {
		e.keepDraft(p, err)
		return err
	}
	e.warnUnknown(p, res)

	q := p.Clone()
	q.Order = e.snapshot.Order
	q.ID = e.snapshot.ID
	q.PhaseNumber = e.snapshot.PhaseNumber
	q.IsActive = e.snapshot.IsActive
	q.IsCompleted = e.snapshot.IsCompleted
	q.MatchesCount = e.snapshot.MatchesCount
	e.phases[i] = q
	e.closeDraft()
	return nil
}

// CancelEdit возвращает фазе i снимок, сделанный в BeginEdit.
func (e *Editor) CancelEdit(i int) error {
	if err := e.checkEditing(i); err != nil {
		return err
	}
	e.phases[i] = e.snapshot.Clone()
	e.closeDraft()
	return nil
}

// CommitDraft фиксирует открытый черновик тем же путём, что CommitAdd или CommitEdit.
func (e *Editor) CommitDraft() error {
	switch e.state {
	case StateAddingPhase:
		return e.CommitAdd(*e.draft)
	case StateEditingPhase:
		return e.CommitEdit(e.editIndex, *e.draft)
	default:
		return fmt.Errorf("commit draft in state %s: %w", e.state, ErrInvalidTransition)
	}
}

// Remove удаляет фазу i и перенумеровывает оставшиеся в 1..N-1.
// Открытое редактирование закрывается, черновик новой фазы остаётся.
func (e *Editor) Remove(i int) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	if e.state == StateEditingPhase {
		e.phases[e.editIndex] = e.snapshot.Clone()
		e.closeDraft()
	}
	e.phases = append(e.phases[:i], e.phases[i+1:]...)
	for j := range e.phases {
		e.phases[j].Order = j + 1
	}
	if e.state != StateAddingPhase {
		e.settle()
	}
	return nil
}

func (e *Editor) MoveUp(i int) error {
	if err := e.checkMove(i); err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	e.swap(i-1, i)
	return nil
}

func (e *Editor) MoveDown(i int) error {
	if err := e.checkMove(i); err != nil {
		return err
	}
	if i == len(e.phases)-1 {
		return nil
	}
	e.swap(i, i+1)
	return nil
}

// Replace принимает каноническую копию схемы от сервера как есть.
func (e *Editor) Replace(schema models.PhaseSchema) {
	e.phases = schema.Clone().Phases
	if e.state == StateEditingPhase {
		e.closeDraft()
	}
	if e.state != StateAddingPhase {
		e.settle()
	}
}

// SetDraftField применяет правку одного поля черновика, как её присылает форма.
// Пустые и неположительные числа считаются отсутствующими.
func (e *Editor) SetDraftField(key string, value any) error {
	if e.draft == nil {
		return fmt.Errorf("set draft field in state %s: %w", e.state, ErrInvalidTransition)
	}
	key = strings.TrimSpace(key)
	d := e.draft

	switch key {
	case "":
		return &ValidationError{Field: key, Err: ErrInvalidConfig, Detail: "empty field name"}
	case models.FieldName, models.FieldType:
		s, ok := value.(string)
		if !ok && value != nil {
			return &ValidationError{Field: key, Err: ErrInvalidConfig, Detail: "expected text"}
		}
		if key == models.FieldName {
			d.Name = s
		} else {
			d.Type = s
		}
	case models.FieldHomeAway:
		b, ok := parseBool(value)
		if !ok {
			return &ValidationError{Field: key, Err: ErrInvalidConfig, Detail: "expected a boolean"}
		}
		d.HomeAway = b
		delete(d.Config, models.FieldHomeAway)
	case models.FieldTeamsAdvance, models.FieldGroupsCount, models.FieldTeamsPerGroup:
		var ptr *int
		if n, present, _ := positiveInt(value); present {
			ptr = intPtr(n)
		}
		switch key {
		case models.FieldTeamsAdvance:
			d.TeamsAdvance = ptr
		case models.FieldGroupsCount:
			d.GroupsCount = ptr
		default:
			d.TeamsPerGroup = ptr
		}
	case "order", "id", "phase_number", "is_active", "is_completed", "matches_count":
		return &ValidationError{Field: key, Err: ErrReadOnlyField}
	default:
		if d.Config == nil {
			d.Config = models.PhaseConfig{}
		}
		switch v := value.(type) {
		case nil:
			delete(d.Config, key)
		case string:
			if n, present, ok := positiveInt(v); ok && present {
				d.Config[key] = n
			} else {
				d.Config[key] = v
			}
		case float64:
			if n, _, ok := positiveInt(v); ok {
				d.Config[key] = n
			} else {
				d.Config[key] = v
			}
		default:
			d.Config[key] = v
		}
	}
	delete(e.errs, key)
	return nil
}

// View - всё, что нужно для отрисовки формы в текущем состоянии.
type View struct {
	State      State              `json:"state"`
	Phases     []models.Phase     `json:"phases"`
	Draft      *models.Phase      `json:"draft"`
	DraftType  *models.PhaseType  `json:"draft_type"`
	EditIndex  *int               `json:"edit_index"`
	Errors     map[string]string  `json:"errors"`
	PhaseTypes []models.PhaseType `json:"phase_types"`
}

func (e *Editor) View() View {
	v := View{
		State:      e.state,
		Phases:     e.Schema().Phases,
		Errors:     map[string]string{},
		PhaseTypes: e.registry.Types(),
	}
	for k, msg := range e.errs {
		v.Errors[k] = msg
	}
	if e.draft != nil {
		d := e.draft.Clone()
		v.Draft = &d
		if desc, ok := e.registry.FindByValue(d.Type); ok {
			v.DraftType = &desc
		}
	}
	if i, ok := e.EditIndex(); ok {
		v.EditIndex = &i
	}
	return v
}

func (e *Editor) checkIndex(i int) error {
	if i < 0 || i >= len(e.phases) {
		return fmt.Errorf("index %d of %d phases: %w", i, len(e.phases), ErrIndexOutOfRange)
	}
	return nil
}

func (e *Editor) checkEditing(i int) error {
	if e.state != StateEditingPhase || e.editIndex != i {
		return fmt.Errorf("phase %d is not being edited: %w", i, ErrInvalidTransition)
	}
	return nil
}

func (e *Editor) checkMove(i int) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	if e.state == StateEditingPhase {
		return fmt.Errorf("move while editing phase %d: %w", e.editIndex, ErrInvalidTransition)
	}
	return nil
}

// swap меняет соседние фазы местами и выставляет им order по новым позициям.
func (e *Editor) swap(a, b int) {
	e.phases[a], e.phases[b] = e.phases[b], e.phases[a]
	e.phases[a].Order = a + 1
	e.phases[b].Order = b + 1
}

func (e *Editor) keepDraft(p models.Phase, err error) {
	d := p.Clone()
	e.draft = &d
	e.errs = FieldErrors(err)
}

func (e *Editor) closeDraft() {
	e.draft = nil
	e.errs = nil
	e.editIndex = -1
	e.snapshot = models.Phase{}
	e.settle()
}

func (e *Editor) settle() {
	if len(e.phases) == 0 {
		e.state = StateEmpty
	} else {
		e.state = StateEditing
	}
}

func (e *Editor) warnUnknown(p models.Phase, res *Result) {
	if len(res.UnknownKeys) == 0 {
		return
	}
	e.log.Warn("unrecognized phase config keys",
		slog.String("phase", strings.TrimSpace(p.Name)),
		slog.String("type", p.Type),
		slog.Any("keys", res.UnknownKeys))
}
