package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/tether/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// CommandsMarkdown renders the registry as a table.
func CommandsMarkdown(descs []domain.Descriptor) string {
	var b strings.Builder
	b.WriteString("# Commands\n\n")
	if len(descs) == 0 {
		b.WriteString("_No commands registered._\n")
		return b.String()
	}
	b.WriteString("| Name | Kind | Exclusive | Description |\n")
	b.WriteString("|------|------|-----------|-------------|\n")
	for _, d := range descs {
		excl := ""
		if d.Exclusive {
			excl = "yes"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", d.Name, d.Kind, excl, escapeCell(d.Description))
	}
	return b.String()
}

// ResultMarkdown renders one invocation result.
func ResultMarkdown(res *domain.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", res.Command)
	fmt.Fprintf(&b, "- **exit code:** %d\n", res.ExitCode)
	fmt.Fprintf(&b, "- **duration:** %s\n", res.Duration.Round(time.Millisecond))
	if res.Lossy {
		b.WriteString("- **note:** output contained invalid UTF-8, replaced with U+FFFD\n")
	}
	b.WriteString("\n## Output\n\n")
	b.WriteString(fence(res.Output))
	if res.Stderr != "" {
		b.WriteString("\n## Stderr\n\n")
		b.WriteString(fence(res.Stderr))
	}
	return b.String()
}

// HistoryMarkdown renders history records as a table.
func HistoryMarkdown(recs []domain.Record) string {
	var b strings.Builder
	b.WriteString("# History\n\n")
	if len(recs) == 0 {
		b.WriteString("_No invocations yet._\n")
		return b.String()
	}
	b.WriteString("| Started | Command | Exit | Duration | Error |\n")
	b.WriteString("|---------|---------|------|----------|-------|\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "| %s | `%s` | %d | %s | %s |\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Command,
			r.ExitCode,
			r.Duration.Round(time.Millisecond),
			escapeCell(r.Error),
		)
	}
	return b.String()
}

func fence(s string) string {
	s = strings.TrimRight(s, "\n")
	return "```\n" + s + "\n```\n"
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
