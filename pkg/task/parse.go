package task

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingID is returned by [ParseRecord] when a record has no
	// numeric id. Batch callers skip such records.
	ErrMissingID = errors.New("missing numeric task id")

	// ErrUnknownSchema is returned for records built without a schema.
	ErrUnknownSchema = errors.New("unknown record schema")
)

// Record is one raw row of a task file, already mapped to canonical fields.
type Record struct {
	Schema Schema
	Row    int // 1-based data row, used in diagnostics
	Fields map[Field]string
}

// ParseOptions controls unit normalization.
type ParseOptions struct {
	// HoursPerDay converts [SchemaDays] durations. Zero means DefaultHoursPerDay.
	HoursPerDay float64
}

func (o ParseOptions) hoursPerDay() float64 {
	if o.HoursPerDay > 0 {
		return o.HoursPerDay
	}
	return DefaultHoursPerDay
}

// Skipped describes a record that [ParseRecords] dropped.
type Skipped struct {
	Row    int
	Reason error
}

func (s Skipped) String() string {
	return fmt.Sprintf("row %d: %v", s.Row, s.Reason)
}

// ParseRecord converts a raw record into a Task.
//
// Durations are converted to hours; missing, unparseable or non-positive
// durations become [MinDuration]. Dependency tokens are split on ';' and ','
// and any token that is not a positive integer is dropped.
func ParseRecord(rec Record, opts ParseOptions) (Task, error) {
	if rec.Schema == SchemaUnknown {
		return Task{}, ErrUnknownSchema
	}
	id, ok := ParseID(rec.Fields[FieldID])
	if !ok {
		return Task{}, ErrMissingID
	}

	t := Task{
		ID:           id,
		Name:         strings.TrimSpace(rec.Fields[FieldName]),
		Owner:        strings.TrimSpace(rec.Fields[FieldOwner]),
		Duration:     parseDuration(rec.Fields[FieldDuration], unitHours(rec.Schema, opts)),
		Dependencies: ParseDependencies(rec.Fields[FieldDependencies]),
	}
	if t.Name == "" || strings.EqualFold(t.Name, "nan") {
		t.Name = DefaultName(id)
	}
	if t.Owner == "" || strings.EqualFold(t.Owner, "nan") {
		t.Owner = DefaultOwner
	}
	return t, nil
}

// ParseRecords parses every record, collecting the ones it had to skip
// instead of failing the batch.
func ParseRecords(recs []Record, opts ParseOptions) ([]Task, []Skipped) {
	tasks := make([]Task, 0, len(recs))
	var skipped []Skipped
	for _, rec := range recs {
		t, err := ParseRecord(rec, opts)
		if err != nil {
			skipped = append(skipped, Skipped{Row: rec.Row, Reason: err})
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, skipped
}

// ParseDependencies splits a dependency cell on ';' and ',' and returns the
// positive integer ids it contains, without duplicates, in order.
func ParseDependencies(s string) []int {
	tokens := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	deps := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if id, ok := ParseID(tok); ok && id > 0 {
			deps = append(deps, id)
		}
	}
	return dedupe(deps)
}

func unitHours(s Schema, opts ParseOptions) float64 {
	if s == SchemaDays {
		return opts.hoursPerDay()
	}
	return 1
}

// ParseID parses a task id. It accepts plain integers and integral floats
// ("3.0"), which is how spreadsheet exports often write ids.
func ParseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func parseDuration(s string, unit float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return MinDuration
	}
	if h := f * unit; h > 0 {
		return h
	}
	return MinDuration
}
