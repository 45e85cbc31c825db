package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/WebNaresh/expense-management/internal/tasks"
)

// dueLayout renders like "Tue, Mar 3, 10:00 AM".
const dueLayout = "Mon, Jan 2, 3:04 PM"

// completedCap is how many completed tasks VIEW_TASKS lists.
const completedCap = 3

const (
	replyNeedTaskName    = "I couldn't understand the task details. Please specify what task you'd like to add."
	replyNoTasks         = "You don't have any tasks scheduled at the moment."
	replyNoTasksToday    = "You don't have any tasks scheduled for today."
	replyNothingPending  = "You don't have any pending tasks to complete. 🎉"
	replyGenericFailure  = "Sorry, something went wrong while handling your request. Please try again."
	replyCompleteExample = "Reply with something like \"mark the first one done\", \"completed task 2\" or \"done with <task name>\"."
)

// FormatDue renders t in loc (or t's own location when loc is nil).
func FormatDue(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dueLayout)
}

func createdReply(t tasks.Task, loc *time.Location) string {
	return fmt.Sprintf("✅ Task created: %q scheduled for %s", t.Name, FormatDue(t.DueAt, loc))
}

func completedReply(t tasks.Task) string {
	return fmt.Sprintf("✅ Marked %q as completed.", t.Name)
}

// formatTaskList renders pending tasks in full, numbered, followed by
// completed tasks. maxCompleted <= 0 lists every completed task.
func formatTaskList(header string, list []tasks.Task, maxCompleted int, loc *time.Location) string {
	pending := tasks.Pending(list)
	completed := tasks.Completed(list)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	if len(pending) > 0 {
		b.WriteString("Pending Tasks:\n")
		for i, t := range pending {
			fmt.Fprintf(&b, "%d. %s - Due: %s\n", i+1, t.Name, FormatDue(t.DueAt, loc))
		}
	}

	if len(completed) > 0 {
		if len(pending) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Completed Tasks:\n")
		shown := completed
		if maxCompleted > 0 && len(shown) > maxCompleted {
			shown = mostRecent(completed, maxCompleted)
		}
		for _, t := range shown {
			fmt.Fprintf(&b, "✓ %s\n", t.Name)
		}
		if rest := len(completed) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "...and %d more completed tasks\n", rest)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// mostRecent returns the n completed tasks with the latest due times, newest
// first. list is ordered by ascending due time.
func mostRecent(list []tasks.Task, n int) []tasks.Task {
	out := make([]tasks.Task, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, list[i])
	}
	return out
}

// pendingPrompt lists pending tasks numbered so the user can pick one.
func pendingPrompt(pending []tasks.Task, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("Which task did you complete?\n\n")
	for i, t := range pending {
		fmt.Fprintf(&b, "%d. %s - Due: %s\n", i+1, t.Name, FormatDue(t.DueAt, loc))
	}
	b.WriteString("\n")
	b.WriteString(replyCompleteExample)
	return b.String()
}
