package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"quotacard/internal/domain"
)

// Markers for candidate rows.
const (
	markerSelected   = "[x]"
	markerUnselected = "[ ]"
	cursorGlyph      = "›"
)

// Renderer renders the editor form from the current state. Every frame is
// rebuilt from scratch; the selection lists are the single source of truth,
// so selected markers and the chip rows cannot go stale.
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new form renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// RenderCandidateList renders one picklist pane. A row shows the selected
// marker exactly when its slug is in the selection list.
func (r *Renderer) RenderCandidateList(title string, items []domain.Candidate, cursor int, isSelected func(string) bool, focused bool, height int) string {
	var b strings.Builder
	b.WriteString(r.styles.PaneTitle.Render(title))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(r.styles.Dim.Render("no candidates"))
	} else {
		start, end := visibleWindow(len(items), cursor, height)
		for i := start; i < end; i++ {
			item := items[i]

			marker := markerUnselected
			if isSelected(item.Slug) {
				marker = r.styles.Marker.Render(markerSelected)
			}

			prefix := " "
			if focused && i == cursor {
				prefix = r.styles.Cursor.Render(cursorGlyph)
			}

			name := item.Name
			if isSelected(item.Slug) {
				name = r.styles.Selected.Render(name)
			}

			b.WriteString(fmt.Sprintf("%s %s %s", prefix, marker, name))
			if i < end-1 {
				b.WriteString("\n")
			}
		}
		if end < len(items) {
			b.WriteString("\n")
			b.WriteString(r.styles.Dim.Render(fmt.Sprintf("… %d more", len(items)-end)))
		}
	}

	pane := r.styles.Pane
	if focused {
		pane = r.styles.PaneFocused
	}
	return pane.Render(b.String())
}

// RenderChips renders the selection summary for one list, rebuilt in full
// from the selection list in its current order.
func (r *Renderer) RenderChips(label string, selected []domain.Candidate) string {
	parts := []string{r.styles.ChipLabel.Render(label + ":")}
	if len(selected) == 0 {
		parts = append(parts, r.styles.Dim.Render("none"))
	} else {
		for _, c := range selected {
			parts = append(parts, r.styles.Chip.Render(c.Name))
		}
	}
	return strings.Join(parts, " ")
}

// RenderField renders one labelled input line.
func (r *Renderer) RenderField(label, value string, focused bool) string {
	prefix := " "
	if focused {
		prefix = r.styles.Cursor.Render(cursorGlyph)
	}
	return fmt.Sprintf("%s %s %s", prefix, r.styles.Label.Render(label), value)
}

// RenderSwatch renders a color preview block, or a marker when the value
// does not parse as a hex color.
func (r *Renderer) RenderSwatch(value string) string {
	if _, err := colorful.Hex(strings.TrimSpace(value)); err != nil {
		return r.styles.SwatchInvalid.Render("??")
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(strings.TrimSpace(value))).Render("  ")
}

// RenderQuote renders the quote preview line.
func (r *Renderer) RenderQuote(quote *domain.Quote) string {
	if quote == nil {
		return r.styles.Dim.Render("no quote fetched yet")
	}
	return fmt.Sprintf("%s %s",
		r.styles.QuoteContent.Render("“"+quote.Content+"”"),
		r.styles.QuoteAuthor.Render("— "+quote.Author))
}

// RenderStatus renders the status line.
func (r *Renderer) RenderStatus(status string) string {
	return r.styles.Status.Render(status)
}

// RenderTitle renders the application title.
func (r *Renderer) RenderTitle(entityID string) string {
	return r.styles.Title.Render("quotacard · " + entityID)
}

// RenderHelp renders the key help line.
func (r *Renderer) RenderHelp(help string) string {
	return r.styles.Help.Render(help)
}

// visibleWindow computes the slice of rows to show so the cursor stays on
// screen.
func visibleWindow(total, cursor, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}
