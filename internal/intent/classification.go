// Package intent turns a free-text chat message into a task operation and a
// reply: LLM classification, task reference resolution and dispatch.
package intent

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/WebNaresh/expense-management/internal/shared/llmutils"
)

// Intent is the closed set of things a message can ask for.
type Intent string

const (
	IntentCreateTask      Intent = "CREATE_TASK"
	IntentViewTasks       Intent = "VIEW_TASKS"
	IntentViewTodaysTasks Intent = "VIEW_TODAYS_TASKS"
	IntentCompleteTask    Intent = "COMPLETE_TASK"
	IntentOther           Intent = "OTHER"
)

// ParseIntent maps a model-supplied tag onto the closed set; anything
// unrecognised is IntentOther.
func ParseIntent(s string) Intent {
	tag := strings.ToUpper(strings.TrimSpace(s))
	tag = strings.NewReplacer(" ", "_", "-", "_").Replace(tag)
	switch Intent(tag) {
	case IntentCreateTask, IntentViewTasks, IntentViewTodaysTasks, IntentCompleteTask:
		return Intent(tag)
	default:
		return IntentOther
	}
}

// Details holds the parameters extracted from the message. Every field is
// optional; zero values mean "absent".
type Details struct {
	TaskName     string
	TaskPosition string
	TaskIndex    *int
	Date         string
}

// Classification is the validated result of classifying one message.
type Classification struct {
	Intent     Intent
	Details    Details
	Confidence float64
}

// Unclassified is the result used whenever the model output cannot be trusted.
func Unclassified() Classification {
	return Classification{Intent: IntentOther}
}

// fields is a decoded JSON object whose values are coerced one at a time, so
// one malformed value never discards the others.
type fields map[string]json.RawMessage

func (f fields) str(keys ...string) string {
	for _, k := range keys {
		if v := coerceString(f[k]); v != "" {
			return v
		}
	}
	return ""
}

func (f fields) index(key string) (*int, bool) {
	idx, ok := coerceInt(f[key])
	if !ok {
		return nil, false
	}
	return &idx, true
}

// ParseClassification decodes and validates raw model output. It never
// fails: output without an object or an intent yields Unclassified(), and
// malformed details are treated as absent. Some models emit the detail keys
// at the top level instead of under "details"; both are accepted.
func ParseClassification(raw string) Classification {
	var top fields
	if err := json.Unmarshal([]byte(llmutils.CleanJSON(raw)), &top); err != nil {
		return Unclassified()
	}
	tag := coerceString(top["intent"])
	if tag == "" {
		return Unclassified()
	}

	var det fields
	if err := json.Unmarshal(top["details"], &det); err != nil {
		det = nil
	}

	d := Details{
		TaskName:     firstNonEmpty(det.str("task_name"), top.str("task_name")),
		TaskPosition: firstNonEmpty(det.str("task_position"), top.str("task_position")),
		Date:         firstNonEmpty(det.str("date", "due_date"), top.str("due_date", "date")),
	}
	if idx, ok := det.index("task_index"); ok {
		d.TaskIndex = idx
	} else if idx, ok := top.index("task_index"); ok {
		d.TaskIndex = idx
	}

	return Classification{
		Intent:     ParseIntent(tag),
		Details:    d,
		Confidence: coerceConfidence(top["confidence"]),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// coerceInt accepts 2, 2.0 and "2".
func coerceInt(raw json.RawMessage) (int, bool) {
	f, ok := coerceNumber(raw)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// coerceString accepts a JSON string or number; anything else is absent.
func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func coerceConfidence(raw json.RawMessage) float64 {
	f, ok := coerceNumber(raw)
	if !ok || math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}

func coerceNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
