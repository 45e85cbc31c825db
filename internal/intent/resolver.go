package intent

import (
	"strings"

	"github.com/WebNaresh/expense-management/internal/tasks"
)

// positional words, checked in order; -1 means "last".
var positions = []struct {
	words []string
	index int
}{
	{[]string{"first", "1st"}, 0},
	{[]string{"second", "2nd"}, 1},
	{[]string{"third", "3rd"}, 2},
	{[]string{"fourth", "4th"}, 3},
	{[]string{"fifth", "5th"}, 4},
	{[]string{"last"}, -1},
}

// Resolve picks the task a COMPLETE_TASK message refers to among open, which
// must be in display order. Rules, first match wins: positional word,
// 1-based index, case-insensitive name substring, sole remaining task.
func Resolve(d Details, open []tasks.Task) (tasks.Task, bool) {
	if pos := strings.ToLower(strings.TrimSpace(d.TaskPosition)); pos != "" {
		if idx, ok := positionIndex(pos, len(open)); ok {
			if idx >= 0 && idx < len(open) {
				return open[idx], true
			}
			return tasks.Task{}, false
		}
	}

	if d.TaskIndex != nil {
		if n := *d.TaskIndex; n >= 1 && n <= len(open) {
			return open[n-1], true
		}
	}

	if name := strings.ToLower(strings.TrimSpace(d.TaskName)); name != "" {
		for _, t := range open {
			if strings.Contains(strings.ToLower(t.Name), name) {
				return t, true
			}
		}
	}

	if len(open) == 1 {
		return open[0], true
	}
	return tasks.Task{}, false
}

// positionIndex reports the index a positional phrase names. ok is false when
// the phrase contains no positional word.
func positionIndex(phrase string, n int) (idx int, ok bool) {
	for _, p := range positions {
		for _, w := range p.words {
			if strings.Contains(phrase, w) {
				if p.index < 0 {
					return n - 1, true
				}
				return p.index, true
			}
		}
	}
	return 0, false
}
