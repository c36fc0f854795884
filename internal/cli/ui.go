package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/critpath/pkg/analysis"
	"github.com/matzehuels/critpath/pkg/bottleneck"
	"github.com/matzehuels/critpath/pkg/suggest"
	"github.com/matzehuels/critpath/pkg/task"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleCritical marks critical path tasks.
	StyleCritical = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Analysis Report
// =============================================================================

// formatHours renders a duration in hours without trailing zeros.
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

func keyValue(key, value string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	return keyStyle.Render(key) + " " + StyleValue.Render(value)
}

// headerRow is the row index lipgloss passes to StyleFunc for headers.
const headerRow = -1

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...)
}

// renderSummary describes the critical path in a few lines.
func renderSummary(res *analysis.Result) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Critical Path"))
	b.WriteString("\n")

	ids := make([]string, len(res.CriticalPathIDs))
	for i, id := range res.CriticalPathIDs {
		ids[i] = strconv.Itoa(id)
	}
	path := strings.Join(ids, " "+iconArrow+" ")
	if path == "" {
		path = "none"
	}
	b.WriteString(keyValue("path", path) + "\n")
	b.WriteString(keyValue("duration", formatHours(res.CriticalPathDuration)) + "\n")
	if res.Schedule != nil {
		b.WriteString(keyValue("project length", formatHours(res.ProjectDuration)) + "\n")
	}
	b.WriteString(keyValue("total work", formatHours(res.TotalDuration)) + "\n")
	b.WriteString(keyValue("tasks", strconv.Itoa(len(res.Tasks))) + "\n")
	b.WriteString(keyValue("bottlenecks", strconv.Itoa(len(res.Bottlenecks))) + "\n")

	if res.Fallback {
		b.WriteString(StyleWarning.Render("no dependency chain found; showing the longest single task") + "\n")
	}
	if res.HasCycle {
		b.WriteString(StyleWarning.Render("dependencies contain a cycle; the path was cut where it revisits a task") + "\n")
	}
	if n := len(res.Unresolved); n > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d dependencies reference unknown tasks", n)) + "\n")
	}
	return b.String()
}

// renderTasks renders every task with critical and bottleneck markers and,
// for acyclic plans, its earliest start, earliest finish and slack.
func renderTasks(res *analysis.Result) string {
	flagged := make(map[int]bool, len(res.Bottlenecks))
	for _, id := range res.Bottlenecks {
		flagged[id] = true
	}

	rows := make([][]string, 0, len(res.Tasks))
	for _, t := range res.Tasks {
		mark := ""
		if t.IsCritical {
			mark = "●"
		}
		if flagged[t.ID] {
			mark += "!"
		}
		start, finish, slack := "-", "-", "-"
		if s, ok := res.Slot(t.ID); ok {
			start, finish, slack = formatHours(s.EarlyStart), formatHours(s.EarlyFinish), formatHours(s.Slack)
		}
		rows = append(rows, []string{mark, strconv.Itoa(t.ID), t.Name, t.Owner, formatHours(t.Duration), start, finish, slack, joinIDs(t.Dependencies)})
	}

	t := newTable("", "ID", "Task", "Owner", "Duration", "Start", "Finish", "Slack", "Depends on").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if row < 0 || row >= len(res.Tasks) {
				return lipgloss.NewStyle()
			}
			tk := res.Tasks[row]
			switch {
			case tk.IsCritical:
				return StyleCritical
			case flagged[tk.ID]:
				return StyleWarning
			case col == 8:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	return t.Render() + "\n"
}

// renderBottlenecks renders the ranked bottlenecks.
func renderBottlenecks(ranked []bottleneck.Bottleneck) string {
	if len(ranked) == 0 {
		return StyleSuccess.Render(iconSuccess+" No bottlenecks") + "\n"
	}
	rows := make([][]string, len(ranked))
	for i, bn := range ranked {
		reasons := make([]string, len(bn.Reasons))
		for j, r := range bn.Reasons {
			reasons[j] = string(r)
		}
		rows[i] = []string{
			strconv.Itoa(bn.ID), bn.Name, bn.Owner, formatHours(bn.Duration),
			strconv.Itoa(bn.Dependencies), strconv.Itoa(bn.Descendants),
			strings.Join(reasons, ", "),
		}
	}
	t := newTable("ID", "Task", "Owner", "Duration", "Deps", "Blocks", "Why").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if col == 6 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	return StyleTitle.Render("Bottlenecks") + "\n" + t.Render() + "\n"
}

// renderWorkload renders hours per owner.
func renderWorkload(loads []analysis.OwnerLoad) string {
	rows := make([][]string, len(loads))
	for i, l := range loads {
		rows[i] = []string{l.Owner, strconv.Itoa(l.Tasks), formatHours(l.Hours), formatHours(l.CriticalHours)}
	}
	t := newTable("Owner", "Tasks", "Hours", "On path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			return lipgloss.NewStyle()
		})
	return StyleTitle.Render("Workload") + "\n" + t.Render() + "\n"
}

// renderSuggestions renders fetched suggestions, failures included.
func renderSuggestions(sugs []suggest.Suggestion) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Suggestions"))
	b.WriteString("\n")
	for _, s := range sugs {
		head := fmt.Sprintf("%s #%d %s", iconArrow, s.TaskID, s.TaskName)
		if s.Failed() {
			b.WriteString(styleIconError.Render(head) + "\n")
			b.WriteString("  " + StyleWarning.Render(s.Error) + "\n")
			continue
		}
		b.WriteString(StyleNumber.Render(head) + "\n")
		for _, line := range strings.Split(strings.TrimSpace(s.Text), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

// writeReport writes the human-readable analysis report.
func writeReport(w io.Writer, res *analysis.Result, sugs []suggest.Suggestion) error {
	parts := []string{renderSummary(res), renderTasks(res), renderBottlenecks(res.Ranked)}
	if len(res.Workload) > 0 {
		parts = append(parts, renderWorkload(res.Workload))
	}
	if len(sugs) > 0 {
		parts = append(parts, renderSuggestions(sugs))
	}
	_, err := io.WriteString(w, strings.Join(parts, "\n"))
	return err
}

func joinIDs(ids []int) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(id)
	}
	return strings.Join(s, ", ")
}

// taskLabel formats a task as "#id name".
func taskLabel(t task.Task) string {
	return fmt.Sprintf("#%d %s", t.ID, t.Name)
}
