package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"readingquiz"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	emphasisStyle  = lipgloss.NewStyle().Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// renderMarkdown draws the formatter's "**" spans in bold for the terminal
func renderMarkdown(formatted string) string {
	parts := strings.Split(formatted, "**")
	var sb strings.Builder
	for i, part := range parts {
		if i%2 == 1 && i < len(parts)-1 {
			sb.WriteString(emphasisStyle.Render(part))
			continue
		}
		if i%2 == 1 {
			// unmatched opener
			sb.WriteString("**")
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func renderScore(score *readingquiz.Score) string {
	var sb strings.Builder

	for _, r := range score.Results {
		if r.Correct {
			sb.WriteString(correctStyle.Render(fmt.Sprintf("✅ Q%d is correct!", r.Number)))
		} else {
			sb.WriteString(incorrectStyle.Render(fmt.Sprintf("❌ Q%d is incorrect. Correct answer: %s", r.Number, r.CorrectAnswer)))
		}
		sb.WriteString("\n")
		if r.Explanation != "" {
			sb.WriteString(emphasisStyle.Render("Explanation:") + " " + r.Explanation + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Total Score: %d / %d Points", score.Correct, score.Total)))
	sb.WriteString("\n")
	if score.Total > 0 {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("(%.1f%%)", score.Percent())))
		sb.WriteString("\n")
	}
	return sb.String()
}
