package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/icco/moviefinder/lib/presenter"
)

// renderResults draws a presenter.View. Hidden views draw nothing.
func renderResults(view presenter.View, expanded map[string]bool, cursor int, focused bool) string {
	switch view.Kind {
	case presenter.KindSkeleton:
		blocks := make([]string, view.Placeholders)
		for i := range blocks {
			blocks[i] = skeletonStyle.Render(strings.Join([]string{
				strings.Repeat("░", 40),
				strings.Repeat("░", 30),
				strings.Repeat("░", 10),
			}, "\n"))
		}
		return lipgloss.JoinVertical(lipgloss.Left, blocks...)

	case presenter.KindGrid:
		blocks := make([]string, len(view.Cards))
		for i, c := range view.Cards {
			style := cardStyle
			if focused && i == cursor {
				style = selectedCardStyle
			}
			blocks[i] = style.Render(cardBody(c, expanded[c.Key]))
		}
		return lipgloss.JoinVertical(lipgloss.Left, blocks...)

	default:
		return ""
	}
}

// cardBody is the text inside one card.
func cardBody(c presenter.Card, expanded bool) string {
	var b strings.Builder

	b.WriteString(titleStyle.UnsetMarginBottom().Render(c.Title))
	if c.HasRating() {
		b.WriteString("  ")
		b.WriteString(badgeStyle.Render("Rating: " + c.Rating))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Release Date: "))
	b.WriteString(c.ReleaseDate)
	b.WriteString("\n")

	if len(c.Platforms) > 0 {
		b.WriteString(labelStyle.Render("Watch on: "))
		chips := make([]string, len(c.Platforms))
		for i, p := range c.Platforms {
			chips[i] = platformStyle.Render(p)
		}
		b.WriteString(strings.Join(chips, " "))
		b.WriteString("\n")
	}

	if expanded {
		b.WriteString(c.Overview)
		b.WriteString("\n")
		b.WriteString(focusedStyle.Render("See Less"))
	} else {
		b.WriteString(focusedStyle.Render("See More..."))
	}
	return b.String()
}
