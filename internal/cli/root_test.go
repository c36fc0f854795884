package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/critpath/pkg/pipeline"
)

const planCSV = `task_id,name,assigned_to,estimated_time,dependencies
1,Design,Alice,5,
2,Backend,Bob,8,1
3,API,Carol,4,2
4,Test,Dave,3,2;3
`

// isolate points every config and cache location at temp dirs and returns
// an explicit config file.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CRITPATH_REDIS_URL", "")
	t.Setenv("CRITPATH_CACHE_DIR", "")
	t.Setenv("CRITPATH_ADDR", "")

	cfg := filepath.Join(dir, "critpath.toml")
	body := "[cache]\nbackend = \"file\"\ndir = " + `"` + filepath.ToSlash(filepath.Join(dir, "store")) + `"` + "\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"analyze", "suggest", "serve", "cache", "config", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestAnalyzeJSON(t *testing.T) {
	cfg := isolate(t)
	plan := filepath.Join(t.TempDir(), "plan.csv")
	if err := os.WriteFile(plan, []byte(planCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfg, "analyze", plan, "--format", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got pipeline.Output
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !slices.Equal(got.Result.CriticalPathIDs, []int{1, 2, 3, 4}) {
		t.Errorf("critical path = %v, want [1 2 3 4]", got.Result.CriticalPathIDs)
	}
	if got.Result.CriticalPathDuration != 20 {
		t.Errorf("duration = %v, want 20", got.Result.CriticalPathDuration)
	}
}

func TestAnalyzeTableFromStdin(t *testing.T) {
	cfg := isolate(t)
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(planCSV))
	root.SetArgs([]string{"--config", cfg, "analyze", "-", "--input-format", "csv", "--threshold", "4"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"Critical Path", "20h", "Bottlenecks", "Backend", "Workload"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	cfg := isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.csv")}},
		{"bad output format", []string{"analyze", "x.csv", "--format", "yaml"}},
		{"bad input format", []string{"analyze", "-", "--input-format", "xml"}},
		{"no args", []string{"analyze"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, append([]string{"--config", cfg}, tt.args...)...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAnalyzeRejectsNonPositiveFlags(t *testing.T) {
	cfg := isolate(t)
	plan := filepath.Join(t.TempDir(), "plan.csv")
	if err := os.WriteFile(plan, []byte(planCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		args []string
		flag string
	}{
		{[]string{"analyze", plan, "--max-deps", "0"}, "--max-deps"},
		{[]string{"analyze", plan, "--threshold", "0"}, "--threshold"},
		{[]string{"analyze", plan, "--threshold", "-5"}, "--threshold"},
		{[]string{"analyze", plan, "--hours-per-day", "0"}, "--hours-per-day"},
		{[]string{"analyze", plan, "--limit", "0"}, "--limit"},
		{[]string{"suggest", plan, "--limit", "0"}, "--limit"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[2:], " "), func(t *testing.T) {
			_, err := execute(t, append([]string{"--config", cfg}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.flag) {
				t.Errorf("err = %v, want complaint about %s", err, tt.flag)
			}
		})
	}
}

func TestSuggestNotConfigured(t *testing.T) {
	cfg := isolate(t)
	plan := filepath.Join(t.TempDir(), "plan.csv")
	if err := os.WriteFile(plan, []byte(planCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "--config", cfg, "suggest", plan)
	if err == nil || !strings.Contains(err.Error(), "SUGGESTION_NOT_CONFIGURED") {
		t.Errorf("err = %v, want not configured", err)
	}
}

func TestConfigShow(t *testing.T) {
	cfg := isolate(t)
	out, err := execute(t, "--config", cfg, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[analysis]", "[cache]", "backend = \"file\""} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "api_key =") {
		t.Error("config show must not print the API key")
	}
}

func TestCachePath(t *testing.T) {
	cfg := isolate(t)
	out, err := execute(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "store") {
		t.Errorf("cache path = %q", out)
	}
}

func TestBadConfigFile(t *testing.T) {
	isolate(t)
	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[analysis]\nunknown_key = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", bad, "config", "show"); err == nil {
		t.Error("expected error for unknown key")
	}
}
