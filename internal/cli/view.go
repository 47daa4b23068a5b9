package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.lsp.dev/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderCheck renders the outcome of probing an origin.
func renderCheck(origin string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s\n%s",
			errorStyle.Render("✗"),
			valueStyle.Render(origin),
			subtleStyle.Render(err.Error()))
	}
	return fmt.Sprintf("%s %s %s",
		successStyle.Render("✓"),
		valueStyle.Render(origin),
		subtleStyle.Render("provides import completions"))
}

// renderCompletions renders completion items in their sort order.
func renderCompletions(specifier string, items []protocol.CompletionItem) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Completions for " + specifier))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(subtleStyle.Render("  (none)"))
		return b.String()
	}

	sorted := make([]protocol.CompletionItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SortText != sorted[j].SortText {
			return sorted[i].SortText < sorted[j].SortText
		}
		return sorted[i].Label < sorted[j].Label
	})

	for _, item := range sorted {
		marker := "▸"
		if item.Kind == protocol.CompletionItemKindFile {
			marker = "•"
		}
		b.WriteString(fmt.Sprintf("  %s %s",
			keyStyle.Render(marker), valueStyle.Render(item.Label)))
		if item.Detail != "" {
			b.WriteString(" " + subtleStyle.Render(item.Detail))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderStatus renders the CLI configuration and enabled origins.
func renderStatus(configPath, cacheDir string, origins []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("importls status"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n",
		keyStyle.Render("config:"), renderPathOrNone(configPath)))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		keyStyle.Render("cache:"), valueStyle.Render(cacheDir)))
	b.WriteString("  " + keyStyle.Render("origins:"))
	if len(origins) == 0 {
		b.WriteString(" " + subtleStyle.Render("(none)"))
		return b.String()
	}
	b.WriteString("\n")
	for _, origin := range origins {
		b.WriteString("    " + valueStyle.Render(origin) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPathOrNone(path string) string {
	if path == "" {
		return subtleStyle.Render("(none)")
	}
	return valueStyle.Render(path)
}
