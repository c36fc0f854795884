package task

import (
	"errors"
	"slices"
	"testing"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
)

func TestDetectSchema(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		wantSchema Schema
		wantFields []Field
		wantErr    bool
	}{
		{
			name:       "hours",
			header:     []string{"task_id", "name", "assigned_to", "estimated_time", "dependencies"},
			wantSchema: SchemaHours,
			wantFields: []Field{FieldID, FieldName, FieldOwner, FieldDuration, FieldDependencies},
		},
		{
			name:       "days",
			header:     []string{"Task ID", "Task Name", "Resource", "Duration (days)", "Dependencies"},
			wantSchema: SchemaDays,
			wantFields: []Field{FieldID, FieldName, FieldOwner, FieldDuration, FieldDependencies},
		},
		{
			name:       "MixedCaseAndSpacing",
			header:     []string{"  TASK   ID ", "duration"},
			wantSchema: SchemaDays,
			wantFields: []Field{FieldID, FieldDuration},
		},
		{
			name:       "IDOnly",
			header:     []string{"id"},
			wantSchema: SchemaHours,
			wantFields: []Field{FieldID},
		},
		{
			name:    "NoID",
			header:  []string{"name", "estimated_time"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := DetectSchema(tt.header)
			if tt.wantErr {
				if !cperrors.Is(err, cperrors.ErrCodeInvalidFormat) {
					t.Fatalf("err = %v, want INVALID_FORMAT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectSchema: %v", err)
			}
			if cols.Schema != tt.wantSchema {
				t.Errorf("schema = %v, want %v", cols.Schema, tt.wantSchema)
			}
			if len(cols.Index) != len(tt.wantFields) {
				t.Errorf("fields = %v, want %v", cols.Index, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if got, ok := cols.Index[f]; !ok || got != i {
					t.Errorf("field %d at %d (ok=%v), want %d", f, got, ok, i)
				}
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	hours := func(fields map[Field]string) Record { return Record{Schema: SchemaHours, Row: 1, Fields: fields} }
	days := func(fields map[Field]string) Record { return Record{Schema: SchemaDays, Row: 1, Fields: fields} }

	tests := []struct {
		name    string
		rec     Record
		opts    ParseOptions
		want    Task
		wantErr error
	}{
		{
			name: "HoursSchema",
			rec: hours(map[Field]string{
				FieldID: "2", FieldName: "Backend", FieldOwner: "Bob", FieldDuration: "8", FieldDependencies: "1",
			}),
			want: Task{ID: 2, Name: "Backend", Owner: "Bob", Duration: 8, Dependencies: []int{1}},
		},
		{
			name: "DaysConvertedToHours",
			rec: days(map[Field]string{
				FieldID: "3", FieldName: "API", FieldOwner: "Charlie", FieldDuration: "1.5", FieldDependencies: "1, 2",
			}),
			want: Task{ID: 3, Name: "API", Owner: "Charlie", Duration: 12, Dependencies: []int{1, 2}},
		},
		{
			name: "CustomHoursPerDay",
			rec:  days(map[Field]string{FieldID: "1", FieldDuration: "2"}),
			opts: ParseOptions{HoursPerDay: 6},
			want: Task{ID: 1, Name: "Task 1", Owner: DefaultOwner, Duration: 12, Dependencies: []int{}},
		},
		{
			name: "Defaults",
			rec:  hours(map[Field]string{FieldID: "7"}),
			want: Task{ID: 7, Name: "Task 7", Owner: DefaultOwner, Duration: MinDuration, Dependencies: []int{}},
		},
		{
			name: "FloatID",
			rec:  hours(map[Field]string{FieldID: "4.0", FieldDuration: "3"}),
			want: Task{ID: 4, Name: "Task 4", Owner: DefaultOwner, Duration: 3, Dependencies: []int{}},
		},
		{
			name: "ZeroDurationClamped",
			rec:  hours(map[Field]string{FieldID: "1", FieldDuration: "0"}),
			want: Task{ID: 1, Name: "Task 1", Owner: DefaultOwner, Duration: MinDuration, Dependencies: []int{}},
		},
		{
			name: "NegativeDurationClamped",
			rec:  hours(map[Field]string{FieldID: "1", FieldDuration: "-4"}),
			want: Task{ID: 1, Name: "Task 1", Owner: DefaultOwner, Duration: MinDuration, Dependencies: []int{}},
		},
		{
			name: "GarbageDuration",
			rec:  hours(map[Field]string{FieldID: "1", FieldDuration: "soon"}),
			want: Task{ID: 1, Name: "Task 1", Owner: DefaultOwner, Duration: MinDuration, Dependencies: []int{}},
		},
		{
			name: "BadDependencyTokensDropped",
			rec:  hours(map[Field]string{FieldID: "5", FieldDependencies: "3;x;;-1;0;3,2.5,4"}),
			want: Task{ID: 5, Name: "Task 5", Owner: DefaultOwner, Duration: MinDuration, Dependencies: []int{3, 4}},
		},
		{
			name:    "MissingID",
			rec:     hours(map[Field]string{FieldName: "Orphan"}),
			wantErr: ErrMissingID,
		},
		{
			name:    "NonNumericID",
			rec:     hours(map[Field]string{FieldID: "abc"}),
			wantErr: ErrMissingID,
		},
		{
			name:    "UnknownSchema",
			rec:     Record{Fields: map[Field]string{FieldID: "1"}},
			wantErr: ErrUnknownSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.rec, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecord: %v", err)
			}
			if got.ID != tt.want.ID || got.Name != tt.want.Name || got.Owner != tt.want.Owner {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.Duration != tt.want.Duration {
				t.Errorf("duration = %v, want %v", got.Duration, tt.want.Duration)
			}
			if !slices.Equal(got.Dependencies, tt.want.Dependencies) {
				t.Errorf("dependencies = %v, want %v", got.Dependencies, tt.want.Dependencies)
			}
			if got.IsCritical {
				t.Error("parsed task must not be critical")
			}
		})
	}
}

func TestParseRecordsSkipsBadRows(t *testing.T) {
	cols, err := DetectSchema([]string{"task_id", "name", "estimated_time"})
	if err != nil {
		t.Fatalf("DetectSchema: %v", err)
	}
	recs := []Record{
		cols.Record([]string{"1", "Design", "5"}, 1),
		cols.Record([]string{"", "No id", "2"}, 2),
		cols.Record([]string{"3"}, 3),
	}

	tasks, skipped := ParseRecords(recs, ParseOptions{})
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	if tasks[0].ID != 1 || tasks[1].ID != 3 {
		t.Errorf("ids = %d,%d, want 1,3", tasks[0].ID, tasks[1].ID)
	}
	if len(skipped) != 1 || skipped[0].Row != 2 || !errors.Is(skipped[0].Reason, ErrMissingID) {
		t.Errorf("skipped = %v, want row 2 missing id", skipped)
	}
}

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord(map[string]string{
		"Task ID":         "9",
		"Task Name":       "Review",
		"Resource":        "Dana",
		"Duration (days)": "2",
		"Dependencies":    "1;2",
	}, 4)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	got, err := ParseRecord(rec, ParseOptions{})
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if got.ID != 9 || got.Name != "Review" || got.Owner != "Dana" || got.Duration != 16 {
		t.Errorf("got %+v", got)
	}
	if !slices.Equal(got.Dependencies, []int{1, 2}) {
		t.Errorf("dependencies = %v", got.Dependencies)
	}
}

func TestParseDependencies(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"", []int{}},
		{"1", []int{1}},
		{"1;3", []int{1, 3}},
		{" 2 , 3 ; 2 ", []int{2, 3}},
		{";;,", []int{}},
		{"a;1;b", []int{1}},
	}
	for _, tt := range tests {
		if got := ParseDependencies(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseDependencies(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"4", 4, true},
		{" 12 ", 12, true},
		{"4.0", 4, true},
		{"-2", -2, true},
		{"4.5", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"1e12", 0, false},
		{"x", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseID(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
