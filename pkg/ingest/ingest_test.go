package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/critpath/pkg/analysis"
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/task"
)

const hoursCSV = `task_id,name,assigned_to,estimated_time,dependencies
1,Design,Alice,5,
2,Backend,Bob,8,1
3,API,Charlie,4,2
4,Test,Dave,3,2;3
5,Docs,Eve,2,3
`

const daysCSV = `Task ID,Task Name,Resource,Duration (days),Dependencies
1,Kickoff,Alice,1,
2,Build,Bob,2.5,"1, 7"
x,Broken,Carol,1,
`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"tasks.csv", FormatCSV, false},
		{"TASKS.CSV", FormatCSV, false},
		{"dir/plan.json", FormatJSON, false},
		{"plan.xlsx", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat(%q) error = %v", tt.name, err)
			}
			if err != nil && !cperrors.Is(err, cperrors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s, want INVALID_FORMAT", cperrors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestReadCSVHours(t *testing.T) {
	b, err := Read(strings.NewReader(hoursCSV), FormatCSV, task.ParseOptions{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if b.Schema != task.SchemaHours || len(b.Tasks) != 5 || len(b.Skipped) != 0 {
		t.Fatalf("batch = schema %v, %d tasks, %d skipped", b.Schema, len(b.Tasks), len(b.Skipped))
	}
	got := b.Tasks[3]
	if got.ID != 4 || got.Name != "Test" || got.Owner != "Dave" || got.Duration != 3 || !slices.Equal(got.Dependencies, []int{2, 3}) {
		t.Errorf("task 4 = %+v", got)
	}
	if b.Tasks[0].Dependencies == nil || len(b.Tasks[0].Dependencies) != 0 {
		t.Errorf("task 1 dependencies = %#v, want empty", b.Tasks[0].Dependencies)
	}
}

func TestReadCSVDays(t *testing.T) {
	b, err := Read(strings.NewReader(daysCSV), FormatCSV, task.ParseOptions{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if b.Schema != task.SchemaDays {
		t.Errorf("Schema = %v, want days", b.Schema)
	}
	if len(b.Tasks) != 2 || len(b.Skipped) != 1 {
		t.Fatalf("%d tasks, %d skipped", len(b.Tasks), len(b.Skipped))
	}
	if b.Tasks[1].Duration != 20 {
		t.Errorf("Duration = %v, want 20 hours", b.Tasks[1].Duration)
	}
	if !slices.Equal(b.Tasks[1].Dependencies, []int{1, 7}) {
		t.Errorf("Dependencies = %v", b.Tasks[1].Dependencies)
	}
	if b.Skipped[0].Row != 3 {
		t.Errorf("Skipped row = %d, want 3", b.Skipped[0].Row)
	}
}

func TestReadCSVHoursPerDay(t *testing.T) {
	b, err := Read(strings.NewReader(daysCSV), FormatCSV, task.ParseOptions{HoursPerDay: 6})
	if err != nil {
		t.Fatal(err)
	}
	if b.Tasks[1].Duration != 15 {
		t.Errorf("Duration = %v, want 15", b.Tasks[1].Duration)
	}
}

func TestReadCSVByteOrderMark(t *testing.T) {
	b, err := Read(strings.NewReader("\ufeff"+hoursCSV), FormatCSV, task.ParseOptions{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if b.Schema != task.SchemaHours || len(b.Tasks) != 5 || len(b.Skipped) != 0 {
		t.Fatalf("batch = schema %v, %d tasks, %d skipped", b.Schema, len(b.Tasks), len(b.Skipped))
	}
	if b.Tasks[0].ID != 1 || b.Tasks[0].Name != "Design" {
		t.Errorf("task 1 = %+v", b.Tasks[0])
	}
}

func TestReadCSVEdgeCases(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(""))
	if err != nil || len(recs) != 0 {
		t.Errorf("empty input: %v, %v", recs, err)
	}
	recs, err = ReadCSV(strings.NewReader("task_id,name\n"))
	if err != nil || len(recs) != 0 {
		t.Errorf("header only: %v, %v", recs, err)
	}
	recs, err = ReadCSV(strings.NewReader("task_id,name,estimated_time\n1,Short\n"))
	if err != nil || len(recs) != 1 {
		t.Fatalf("short row: %v, %v", recs, err)
	}
	_, err = ReadCSV(strings.NewReader("foo,bar\n1,2\n"))
	if !cperrors.Is(err, cperrors.ErrCodeInvalidFormat) {
		t.Errorf("missing id column error = %v, want INVALID_FORMAT", err)
	}
}

func TestReadJSON(t *testing.T) {
	in := `[
		{"id": 1, "name": "Design", "owner": "Alice", "duration": 5, "dependencies": []},
		{"id": 2, "name": "", "duration": -3, "dependencies": [1, 1, 0, "x"]},
		{"id": "3", "duration": "2.5", "dependencies": "1;2"},
		{"name": "no id"},
		{"id": 4.5}
	]`
	tasks, skipped, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if len(tasks) != 3 || len(skipped) != 2 {
		t.Fatalf("%d tasks, %d skipped", len(tasks), len(skipped))
	}
	if tasks[1].Name != "Task 2" || tasks[1].Owner != task.DefaultOwner || tasks[1].Duration != task.MinDuration {
		t.Errorf("task 2 = %+v", tasks[1])
	}
	if !slices.Equal(tasks[1].Dependencies, []int{1}) {
		t.Errorf("task 2 dependencies = %v", tasks[1].Dependencies)
	}
	if tasks[2].ID != 3 || tasks[2].Duration != 2.5 || !slices.Equal(tasks[2].Dependencies, []int{1, 2}) {
		t.Errorf("task 3 = %+v", tasks[2])
	}
	if skipped[0].Row != 4 || skipped[1].Row != 5 {
		t.Errorf("skipped rows = %v", skipped)
	}
}

func TestReadJSONDuration(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"number", `2.5`, 2.5},
		{"zero", `0`, 0},
		{"numeric string", `"6"`, 6},
		{"missing", ``, 0},
		{"null", `null`, 0},
		{"negative", `-3`, task.MinDuration},
		{"negative string", `"-1"`, task.MinDuration},
		{"word", `"abc"`, task.MinDuration},
		{"empty string", `""`, task.MinDuration},
		{"bool", `true`, task.MinDuration},
		{"object", `{"h": 2}`, task.MinDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `[{"id": 1}]`
			if tt.raw != "" {
				in = `[{"id": 1, "duration": ` + tt.raw + `}]`
			}
			tasks, _, err := ReadJSON(strings.NewReader(in))
			if err != nil || len(tasks) != 1 {
				t.Fatalf("ReadJSON(%s) = %v, %v", in, tasks, err)
			}
			if tasks[0].Duration != tt.want {
				t.Errorf("Duration = %v, want %v", tasks[0].Duration, tt.want)
			}
		})
	}
}

func TestReadJSONStringIDs(t *testing.T) {
	in := `[
		{"id": "4.0", "duration": 1},
		{"id": " 7 ", "duration": 1, "dependencies": ["4.0", 4]},
		{"id": "4.5"}
	]`
	tasks, skipped, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if len(tasks) != 2 || len(skipped) != 1 {
		t.Fatalf("%d tasks, %d skipped", len(tasks), len(skipped))
	}
	if tasks[0].ID != 4 || tasks[1].ID != 7 {
		t.Errorf("ids = %d, %d, want 4, 7", tasks[0].ID, tasks[1].ID)
	}
	if !slices.Equal(tasks[1].Dependencies, []int{4}) {
		t.Errorf("task 7 dependencies = %v", tasks[1].Dependencies)
	}

	csvTasks, err := Read(strings.NewReader("task_id,name,estimated_time\n4.0,A,1\n"), FormatCSV, task.ParseOptions{})
	if err != nil || len(csvTasks.Tasks) != 1 || csvTasks.Tasks[0].ID != tasks[0].ID {
		t.Errorf("csv id differs from json id: %+v, %v", csvTasks, err)
	}
}

func TestReadJSONStructuralFailure(t *testing.T) {
	for _, in := range []string{`{"id": 1}`, `42`, `"tasks"`, `[1, 2]`, `[{"id": 1}, null]`, `null`, `[{`} {
		t.Run(in, func(t *testing.T) {
			_, _, err := ReadJSON(strings.NewReader(in))
			if !cperrors.Is(err, cperrors.ErrCodeInvalidInput) {
				t.Errorf("ReadJSON(%s) error = %v, want INVALID_INPUT", in, err)
			}
		})
	}
}

func TestReadJSONEmpty(t *testing.T) {
	for _, in := range []string{"", "  \n", "[]"} {
		tasks, _, err := ReadJSON(strings.NewReader(in))
		if err != nil || len(tasks) != 0 {
			t.Errorf("ReadJSON(%q) = %v, %v", in, tasks, err)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.csv")
	if err := os.WriteFile(path, []byte(hoursCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := ReadFile(path, task.ParseOptions{})
	if err != nil || len(b.Tasks) != 5 || b.Format != FormatCSV {
		t.Fatalf("ReadFile() = %+v, %v", b, err)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.csv"), task.ParseOptions{})
	if !cperrors.Is(err, cperrors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	_, err = ReadFile(filepath.Join(dir, "plan.txt"), task.ParseOptions{})
	if !cperrors.Is(err, cperrors.ErrCodeInvalidFormat) {
		t.Errorf("bad extension error = %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	b, err := Read(strings.NewReader(hoursCSV), FormatCSV, task.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, analysis.Analyze(b.Tasks, analysis.Options{})); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	var out struct {
		CriticalPath         []int       `json:"criticalPath"`
		CriticalPathDuration float64     `json:"criticalPathDuration"`
		Bottlenecks          []int       `json:"bottlenecks"`
		Tasks                []task.Task `json:"tasks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !slices.Equal(out.CriticalPath, []int{1, 2, 3, 4}) || out.CriticalPathDuration != 20 {
		t.Errorf("output path = %v (%v)", out.CriticalPath, out.CriticalPathDuration)
	}
	if !slices.Equal(out.Bottlenecks, []int{4}) || len(out.Tasks) != 5 || !out.Tasks[0].IsCritical {
		t.Errorf("output = %+v", out)
	}
}
