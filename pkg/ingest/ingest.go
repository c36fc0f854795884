package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/task"
)

// Format is a supported task file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Batch is the parsed content of one task file.
type Batch struct {
	Format  Format
	Schema  task.Schema // CSV only
	Tasks   []task.Task
	Skipped []task.Skipped
}

// DetectFormat returns the format implied by name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported file type %q (want .csv or .json)", filepath.Ext(name))
	}
}

// ReadFile opens path and reads it in the format implied by its extension.
func ReadFile(path string, opts task.ParseOptions) (*Batch, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "task file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, format, opts)
}

// Read parses r as format.
func Read(r io.Reader, format Format, opts task.ParseOptions) (*Batch, error) {
	switch format {
	case FormatCSV:
		recs, err := ReadCSV(r)
		if err != nil {
			return nil, err
		}
		b := &Batch{Format: FormatCSV}
		if len(recs) > 0 {
			b.Schema = recs[0].Schema
		}
		b.Tasks, b.Skipped = task.ParseRecords(recs, opts)
		return b, nil
	case FormatJSON:
		tasks, skipped, err := ReadJSON(r)
		if err != nil {
			return nil, err
		}
		return &Batch{Format: FormatJSON, Tasks: tasks, Skipped: skipped}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}

// ReadCSV reads a header row and returns one raw record per data row.
// Empty input yields no records.
func ReadCSV(r io.Reader) ([]task.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return []task.Record{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv header")
	}
	cols, err := task.DetectSchema(header)
	if err != nil {
		return nil, err
	}

	var recs []task.Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv row %d", row)
		}
		recs = append(recs, cols.Record(fields, row))
	}
	if recs == nil {
		recs = []task.Record{}
	}
	return recs, nil
}

// ReadJSON decodes an array of canonical task objects. Objects without a
// numeric id are skipped; anything that is not an array of objects is an
// INVALID_INPUT error.
func ReadJSON(r io.Reader) ([]task.Task, []task.Skipped, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFile, err, "read input")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []task.Task{}, nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "input must be a JSON array of task objects")
	}

	tasks := make([]task.Task, 0, len(items))
	var skipped []task.Skipped
	for i, raw := range items {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "element %d is not a task object", i)
		}
		t, err := decodeTask(obj)
		if err != nil {
			skipped = append(skipped, task.Skipped{Row: i + 1, Reason: err})
			continue
		}
		tasks = append(tasks, task.Normalize(t))
	}
	return tasks, skipped, nil
}

func decodeTask(obj map[string]any) (task.Task, error) {
	id, ok := intValue(obj["id"])
	if !ok {
		return task.Task{}, task.ErrMissingID
	}
	t := task.Task{
		ID:       id,
		Name:     stringValue(obj["name"]),
		Owner:    stringValue(obj["owner"]),
		Duration: durationValue(obj["duration"]),
	}
	switch deps := obj["dependencies"].(type) {
	case []any:
		for _, d := range deps {
			if n, ok := intValue(d); ok && n > 0 {
				t.Dependencies = append(t.Dependencies, n)
			}
		}
	case string:
		t.Dependencies = task.ParseDependencies(deps)
	}
	return t, nil
}

func intValue(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
			return 0, false
		}
		return int(x), true
	case string:
		return task.ParseID(x)
	default:
		return 0, false
	}
}

// durationValue keeps finite non-negative numbers, numeric strings
// included. A missing duration is 0; any other value becomes
// [task.MinDuration].
func durationValue(v any) float64 {
	f := math.NaN()
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case string:
		if p, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			f = p
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return task.MinDuration
	}
	return f
}

func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
