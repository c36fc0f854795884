package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/critpath/pkg/analysis"
	"github.com/matzehuels/critpath/pkg/suggest"
	"github.com/matzehuels/critpath/pkg/task"
)

func TestFormatHours(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{20, "20h"},
		{7.5, "7.5h"},
		{0, "0h"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.in); got != tt.want {
			t.Errorf("formatHours(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	res := analysis.Analyze([]task.Task{
		{ID: 1, Name: "Design", Owner: "Alice", Duration: 5},
		{ID: 2, Name: "Build", Owner: "Bob", Duration: 50, Dependencies: []int{1}},
	}, analysis.Options{})

	sugs := []suggest.Suggestion{
		{TaskID: 2, TaskName: "Build", Text: "Split the build\ninto two parts"},
		{TaskID: 1, TaskName: "Design", Err: errors.New("quota"), Error: "quota"},
	}
	var buf bytes.Buffer
	if err := writeReport(&buf, res, sugs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"1 → 2", "55h", "Build", "long_duration", "Alice", "Split the build", "quota"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTasksSchedule(t *testing.T) {
	res := analysis.Analyze([]task.Task{
		{ID: 1, Name: "Design", Owner: "Alice", Duration: 5},
		{ID: 2, Name: "Docs", Owner: "Eve", Duration: 2},
		{ID: 3, Name: "Ship", Owner: "Bob", Duration: 1, Dependencies: []int{1, 2}},
	}, analysis.Options{})
	out := renderTasks(res)
	for _, want := range []string{"Start", "Finish", "Slack", "3h"} {
		if !strings.Contains(out, want) {
			t.Errorf("task table missing %q:\n%s", want, out)
		}
	}
	if sum := renderSummary(res); !strings.Contains(sum, "project length") || !strings.Contains(sum, "6h") {
		t.Errorf("summary missing project length:\n%s", sum)
	}

	cyclic := analysis.Analyze([]task.Task{
		{ID: 1, Name: "Ping", Duration: 2, Dependencies: []int{2}},
		{ID: 2, Name: "Pong", Duration: 3, Dependencies: []int{1}},
	}, analysis.Options{})
	if sum := renderSummary(cyclic); strings.Contains(sum, "project length") {
		t.Errorf("cyclic summary shows a project length:\n%s", sum)
	}
}

func TestRenderSummaryFlags(t *testing.T) {
	res := analysis.Analyze([]task.Task{
		{ID: 1, Duration: 2, Dependencies: []int{2}},
		{ID: 2, Duration: 3, Dependencies: []int{1, 9}},
	}, analysis.Options{})
	out := renderSummary(res)
	for _, want := range []string{"cycle", "unknown tasks"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBottlenecksEmpty(t *testing.T) {
	if out := renderBottlenecks(nil); !strings.Contains(out, "No bottlenecks") {
		t.Errorf("renderBottlenecks(nil) = %q", out)
	}
}
