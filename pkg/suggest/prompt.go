package suggest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/critpath/pkg/task"
)

// maxContextTasks caps how many tasks of the plan are quoted in a prompt.
const maxContextTasks = 50

// Prompt builds the project-manager prompt for t. Output is deterministic
// for equal inputs, which the suggestion cache relies on.
func Prompt(t task.Task, all []task.Task) string {
	var b strings.Builder
	b.WriteString("As an experienced project manager, provide specific, actionable suggestions to optimize this task.\n\n")
	fmt.Fprintf(&b, "Task: %s\n", t.Name)
	fmt.Fprintf(&b, "Assigned To: %s\n", t.Owner)
	fmt.Fprintf(&b, "Estimated Duration: %s hours\n", formatHours(t.Duration))
	fmt.Fprintf(&b, "Dependencies: %s\n", joinIDs(t.Dependencies))
	fmt.Fprintf(&b, "Blocks: %s\n", joinIDs(blockedBy(t.ID, all)))

	if len(all) > 0 {
		b.WriteString("\nProject plan (id | name | owner | hours | depends on):\n")
		for i, o := range all {
			if i == maxContextTasks {
				fmt.Fprintf(&b, "... and %d more tasks\n", len(all)-maxContextTasks)
				break
			}
			fmt.Fprintf(&b, "%d | %s | %s | %s | %s\n", o.ID, o.Name, o.Owner, formatHours(o.Duration), joinIDs(o.Dependencies))
		}
	}

	b.WriteString("\nProvide 2-3 specific, actionable suggestions to:\n")
	b.WriteString("1. Optimize the task workflow\n")
	b.WriteString("2. Manage dependencies effectively\n")
	fmt.Fprintf(&b, "3. Ensure balanced workload for %s\n", t.Owner)
	b.WriteString("4. Identify potential risks or bottlenecks\n\n")
	b.WriteString("Format the response with clear bullet points and keep it concise (max 5 bullet points).\n")
	return b.String()
}

// blockedBy returns the ids of tasks in all that list id as a dependency.
func blockedBy(id int, all []task.Task) []int {
	var out []int
	for _, o := range all {
		if o.ID != id && o.DependsOn(id) {
			out = append(out, o.ID)
		}
	}
	return out
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "None"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
