package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/critpath/pkg/analysis"
	"github.com/matzehuels/critpath/pkg/task"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

type pickerKeys struct {
	Up, Down, Select, Quit key.Binding
}

var defaultPickerKeys = pickerKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// =============================================================================
// TaskListModel - Interactive task selection
// =============================================================================

// TaskListModel is the bubbletea model for picking the task to ask about.
// Bottlenecks are listed first, then critical path tasks, then the rest.
type TaskListModel struct {
	Tasks    []task.Task
	Flagged  map[int]bool
	Cursor   int
	Selected *task.Task
	Height   int
	Offset   int

	keys pickerKeys
	help help.Model
}

// NewTaskListModel orders the result's tasks for selection.
func NewTaskListModel(res *analysis.Result) TaskListModel {
	flagged := make(map[int]bool, len(res.Bottlenecks))
	for _, id := range res.Bottlenecks {
		flagged[id] = true
	}
	tasks := make([]task.Task, 0, len(res.Tasks))
	for _, pass := range []func(task.Task) bool{
		func(t task.Task) bool { return flagged[t.ID] },
		func(t task.Task) bool { return !flagged[t.ID] && t.IsCritical },
		func(t task.Task) bool { return !flagged[t.ID] && !t.IsCritical },
	} {
		for _, t := range res.Tasks {
			if pass(t) {
				tasks = append(tasks, t)
			}
		}
	}
	return TaskListModel{Tasks: tasks, Flagged: flagged, Height: 15, keys: defaultPickerKeys, help: help.New()}
}

func (m TaskListModel) Init() tea.Cmd {
	return nil
}

func (m TaskListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case key.Matches(msg, m.keys.Down):
			if m.Cursor < len(m.Tasks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.Tasks) == 0 {
				return m, tea.Quit
			}
			t := m.Tasks[m.Cursor]
			m.Selected = &t
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m TaskListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Task"))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Quit}))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Tasks))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Tasks[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		kind := ""
		switch {
		case m.Flagged[t.ID]:
			kind = "bottleneck"
		case t.IsCritical:
			kind = "critical"
		}
		rows = append(rows, []string{cursor, strconv.Itoa(t.ID), t.Name, t.Owner, formatHours(t.Duration), kind})
	}

	tbl := newTable("", "ID", "Task", "Owner", "Duration", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx < 0 || idx >= len(m.Tasks) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Flagged[m.Tasks[idx].ID] {
				base = base.Foreground(colorYellow)
			} else if col == 5 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Tasks))))
	return b.String()
}

// pickTask runs the picker and returns the chosen task, or false if the
// user quit without choosing.
func pickTask(res *analysis.Result) (task.Task, bool, error) {
	final, err := tea.NewProgram(NewTaskListModel(res)).Run()
	if err != nil {
		return task.Task{}, false, fmt.Errorf("task picker: %w", err)
	}
	m, ok := final.(TaskListModel)
	if !ok || m.Selected == nil {
		return task.Task{}, false, nil
	}
	return *m.Selected, true, nil
}
