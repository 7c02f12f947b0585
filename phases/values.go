package phases

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-admin/models"
)

// Поля фазы верхнего уровня, хранящие положительные целые.
var numericFields = map[string]bool{
	models.FieldTeamsAdvance:  true,
	models.FieldGroupsCount:   true,
	models.FieldTeamsPerGroup: true,
}

// positiveInt читает значение из формы как положительное целое.
// present == false для пустых и неположительных значений, ok == false для значения
// неверной формы (bool, дробное число, нечисловой текст).
func positiveInt(v any) (n int, present bool, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, false, true
	case int:
		return x, x > 0, true
	case int64:
		return int(x), x > 0, true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, false, false
		}
		return int(x), x > 0, true
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, false, false
		}
		return int(i), i > 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false, true
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, false
		}
		return i, i > 0, true
	default:
		return 0, false, false
	}
}

func parseBool(v any) (bool, bool) {
	switch x := v.(type) {
	case nil:
		return false, true
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "false", "0", "off":
			return false, true
		case "true", "1", "on":
			return true, true
		}
	}
	return false, false
}

func intPtr(n int) *int { return &n }

// positivePtr отбрасывает неположительные значения, как очищенное числовое поле формы.
func positivePtr(p *int) *int {
	if p == nil || *p <= 0 {
		return nil
	}
	return intPtr(*p)
}

// numericValue находит числовое поле: сначала верхний уровень, затем config.
func numericValue(p models.Phase, field string) (n int, present bool, ok bool) {
	var top *int
	switch field {
	case models.FieldTeamsAdvance:
		top = p.TeamsAdvance
	case models.FieldGroupsCount:
		top = p.GroupsCount
	case models.FieldTeamsPerGroup:
		top = p.TeamsPerGroup
	}
	if top != nil && *top > 0 {
		return *top, true, true
	}
	if v, found := p.Config[field]; found {
		return positiveInt(v)
	}
	return 0, false, true
}

// requestedHomeAway - переключатель дом/выезд в том виде, как его задал пользователь:
// в самой фазе или в config.
func requestedHomeAway(p models.Phase) bool {
	if p.HomeAway {
		return true
	}
	b, _ := parseBool(p.Config[models.FieldHomeAway])
	return b
}
