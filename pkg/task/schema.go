package task

import (
	"strings"

	"github.com/matzehuels/critpath/pkg/errors"
)

// Schema identifies one of the column-naming conventions task files use.
type Schema int

const (
	// SchemaUnknown is the zero value; records with it cannot be parsed.
	SchemaUnknown Schema = iota
	// SchemaHours: task_id, name, assigned_to, estimated_time (hours), dependencies.
	SchemaHours
	// SchemaDays: Task ID, Task Name, Resource, Duration (days), Dependencies.
	SchemaDays
)

// String returns the schema name used in logs and errors.
func (s Schema) String() string {
	switch s {
	case SchemaHours:
		return "hours"
	case SchemaDays:
		return "days"
	default:
		return "unknown"
	}
}

// Field is a canonical task attribute a column maps onto.
type Field int

const (
	FieldID Field = iota
	FieldName
	FieldOwner
	FieldDuration
	FieldDependencies
)

// Header aliases, compared after [canonicalHeader]. Identity, name, owner
// and dependency columns are shared; the duration column decides the schema.
var (
	idHeaders    = []string{"task_id", "task id", "id"}
	nameHeaders  = []string{"name", "task name", "task_name", "title"}
	ownerHeaders = []string{"assigned_to", "resource", "owner", "assignee"}
	depsHeaders  = []string{"dependencies", "depends_on", "deps"}

	hoursHeaders = []string{"estimated_time", "estimated_hours", "hours"}
	daysHeaders  = []string{"duration (days)", "duration_days", "duration"}
)

// Columns maps header positions to the fields they carry for one schema.
type Columns struct {
	Schema Schema
	Index  map[Field]int
}

// DetectSchema inspects a header row and returns the schema together with
// the position of every recognized column. Only the id column is required;
// a header with a day-based duration column is [SchemaDays], anything else
// is [SchemaHours].
func DetectSchema(header []string) (Columns, error) {
	cols := Columns{Schema: SchemaHours, Index: make(map[Field]int)}
	for i, h := range header {
		key := canonicalHeader(h)
		switch {
		case matches(key, idHeaders):
			setOnce(cols.Index, FieldID, i)
		case matches(key, nameHeaders):
			setOnce(cols.Index, FieldName, i)
		case matches(key, ownerHeaders):
			setOnce(cols.Index, FieldOwner, i)
		case matches(key, depsHeaders):
			setOnce(cols.Index, FieldDependencies, i)
		case matches(key, daysHeaders):
			if _, ok := cols.Index[FieldDuration]; !ok {
				cols.Index[FieldDuration] = i
				cols.Schema = SchemaDays
			}
		case matches(key, hoursHeaders):
			setOnce(cols.Index, FieldDuration, i)
		}
	}
	if _, ok := cols.Index[FieldID]; !ok {
		return Columns{}, errors.New(errors.ErrCodeInvalidFormat,
			"no task id column found in header %q (want one of %s)", strings.Join(header, ","), strings.Join(idHeaders, ", "))
	}
	return cols, nil
}

// Record builds a raw record from one data row using the detected columns.
// Cells beyond the row length are treated as missing.
func (c Columns) Record(row []string, line int) Record {
	rec := Record{Schema: c.Schema, Row: line, Fields: make(map[Field]string, len(c.Index))}
	for f, i := range c.Index {
		if i < len(row) {
			rec.Fields[f] = row[i]
		}
	}
	return rec
}

// NewRecord builds a record from a key/value object whose keys follow one
// of the supported conventions.
func NewRecord(fields map[string]string, line int) (Record, error) {
	header := make([]string, 0, len(fields))
	values := make([]string, 0, len(fields))
	for k, v := range fields {
		header = append(header, k)
		values = append(values, v)
	}
	cols, err := DetectSchema(header)
	if err != nil {
		return Record{}, err
	}
	return cols.Record(values, line), nil
}

func canonicalHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

func matches(key string, aliases []string) bool {
	for _, a := range aliases {
		if key == a {
			return true
		}
	}
	return false
}

func setOnce(m map[Field]int, f Field, i int) {
	if _, ok := m[f]; !ok {
		m[f] = i
	}
}
