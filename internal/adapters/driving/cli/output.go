package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
)

// structured reports whether the user asked for json or yaml output.
func structured() bool {
	return outputFormat == formatJSON || outputFormat == formatYAML
}

// printStructured writes v in the selected machine readable format.
func printStructured(cmd *cobra.Command, v any) error {
	out := cmd.OutOrStdout()
	switch outputFormat {
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}

// isTTY reports whether the command writes to a terminal.
func isTTY(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func render(cmd *cobra.Command, style lipgloss.Style, s string) string {
	if !isTTY(cmd) {
		return s
	}
	return style.Render(s)
}

func printHeader(cmd *cobra.Command, title string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", render(cmd, headerStyle, title))
}

// humanSize formats a byte count.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
