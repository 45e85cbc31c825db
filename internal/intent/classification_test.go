package intent

import "testing"

func TestParseClassification(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Classification
	}{
		{
			name: "nested details",
			raw:  `{"intent":"CREATE_TASK","details":{"task_name":"buy milk","date":"2026-03-04T10:00:00Z"},"confidence":0.92}`,
			want: Classification{Intent: IntentCreateTask, Details: Details{TaskName: "buy milk", Date: "2026-03-04T10:00:00Z"}, Confidence: 0.92},
		},
		{
			name: "flat legacy fields",
			raw:  `{"intent":"CREATE_TASK","task_name":"call Vivek","due_date":"2026-03-04T10:00:00Z","confidence":0.8}`,
			want: Classification{Intent: IntentCreateTask, Details: Details{TaskName: "call Vivek", Date: "2026-03-04T10:00:00Z"}, Confidence: 0.8},
		},
		{
			name: "code fence and string numbers",
			raw:  "```json\n{\"intent\":\"complete_task\",\"details\":{\"task_index\":\"2\"},\"confidence\":\"0.7\"}\n```",
			want: Classification{Intent: IntentCompleteTask, Details: Details{TaskIndex: intPtr(2)}, Confidence: 0.7},
		},
		{
			name: "confidence clamped",
			raw:  `{"intent":"VIEW_TASKS","confidence":7}`,
			want: Classification{Intent: IntentViewTasks, Confidence: 1},
		},
		{
			name: "negative confidence",
			raw:  `{"intent":"VIEW_TASKS","confidence":-2}`,
			want: Classification{Intent: IntentViewTasks, Confidence: 0},
		},
		{
			name: "unknown intent",
			raw:  `{"intent":"DELETE_TASK","confidence":0.9}`,
			want: Classification{Intent: IntentOther, Confidence: 0.9},
		},
		{
			name: "spaced intent",
			raw:  `{"intent":"view todays tasks","confidence":0.9}`,
			want: Classification{Intent: IntentViewTodaysTasks, Confidence: 0.9},
		},
		{
			name: "fractional index ignored",
			raw:  `{"intent":"COMPLETE_TASK","details":{"task_index":1.5},"confidence":0.9}`,
			want: Classification{Intent: IntentCompleteTask, Confidence: 0.9},
		},
		{name: "not json", raw: "I think you want to create a task", want: Unclassified()},
		{name: "empty", raw: "", want: Unclassified()},
		{name: "missing intent", raw: `{"confidence":0.9}`, want: Unclassified()},
		{name: "intent wrong type", raw: `{"intent":{"name":"VIEW_TASKS"},"confidence":0.9}`, want: Unclassified()},
		{name: "top level not an object", raw: `["VIEW_TASKS"]`, want: Unclassified()},
		{
			name: "details as string",
			raw:  `{"intent":"VIEW_TASKS","details":"","confidence":0.95}`,
			want: Classification{Intent: IntentViewTasks, Confidence: 0.95},
		},
		{
			name: "details as array",
			raw:  `{"intent":"VIEW_TODAYS_TASKS","details":[],"confidence":0.9}`,
			want: Classification{Intent: IntentViewTodaysTasks, Confidence: 0.9},
		},
		{
			name: "numeric task name",
			raw:  `{"intent":"CREATE_TASK","details":{"task_name":123},"confidence":0.9}`,
			want: Classification{Intent: IntentCreateTask, Details: Details{TaskName: "123"}, Confidence: 0.9},
		},
		{
			name: "one bad field keeps the rest",
			raw:  `{"intent":"CREATE_TASK","details":{"task_name":"pay rent","date":{"day":1},"task_index":[2]},"confidence":0.8}`,
			want: Classification{Intent: IntentCreateTask, Details: Details{TaskName: "pay rent"}, Confidence: 0.8},
		},
		{
			name: "bad confidence keeps intent",
			raw:  `{"intent":"VIEW_TASKS","confidence":"high"}`,
			want: Classification{Intent: IntentViewTasks, Confidence: 0},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseClassification(c.raw)
			if got.Intent != c.want.Intent {
				t.Errorf("intent = %q, want %q", got.Intent, c.want.Intent)
			}
			if got.Confidence != c.want.Confidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, c.want.Confidence)
			}
			if got.Details.TaskName != c.want.Details.TaskName || got.Details.Date != c.want.Details.Date ||
				got.Details.TaskPosition != c.want.Details.TaskPosition {
				t.Errorf("details = %+v, want %+v", got.Details, c.want.Details)
			}
			switch {
			case (got.Details.TaskIndex == nil) != (c.want.Details.TaskIndex == nil):
				t.Errorf("task index = %v, want %v", got.Details.TaskIndex, c.want.Details.TaskIndex)
			case got.Details.TaskIndex != nil && *got.Details.TaskIndex != *c.want.Details.TaskIndex:
				t.Errorf("task index = %d, want %d", *got.Details.TaskIndex, *c.want.Details.TaskIndex)
			}
		})
	}
}
