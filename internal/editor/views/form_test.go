package views

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotacard/internal/domain"
)

var candidates = []domain.Candidate{
	{Name: "Seneca", Slug: "seneca"},
	{Name: "Marcus Aurelius", Slug: "marcus-aurelius"},
	{Name: "Lao Tzu", Slug: "lao-tzu"},
}

func TestRenderCandidateListMarkers(t *testing.T) {
	r := NewRenderer()
	selected := map[string]bool{"marcus-aurelius": true}

	out := r.RenderCandidateList("Authors", candidates, 0,
		func(slug string) bool { return selected[slug] }, true, 10)

	assert.Contains(t, out, "Authors")
	assert.Equal(t, 1, strings.Count(out, markerSelected),
		"Exactly the selected rows carry the selected marker")
	assert.Equal(t, 2, strings.Count(out, markerUnselected))
}

func TestRenderCandidateListEmpty(t *testing.T) {
	r := NewRenderer()

	out := r.RenderCandidateList("Tags", nil, 0, func(string) bool { return false }, false, 10)

	assert.Contains(t, out, "no candidates")
}

func TestRenderChipsFollowsSelectionOrder(t *testing.T) {
	r := NewRenderer()

	out := r.RenderChips("authors", candidates)

	first := strings.Index(out, "Seneca")
	second := strings.Index(out, "Marcus Aurelius")
	third := strings.Index(out, "Lao Tzu")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second, "Chips keep selection order")
	assert.Less(t, second, third)
}

func TestRenderChipsEmptySelection(t *testing.T) {
	r := NewRenderer()

	out := r.RenderChips("tags", nil)

	assert.Contains(t, out, "tags:")
	assert.Contains(t, out, "none")
}

func TestRenderSwatchMarksInvalidColor(t *testing.T) {
	r := NewRenderer()

	assert.Contains(t, r.RenderSwatch("rebeccapurple"), "??")
	assert.Contains(t, r.RenderSwatch(""), "??")
	assert.NotContains(t, r.RenderSwatch("#336699"), "??")
	assert.NotContains(t, r.RenderSwatch(" #336699 "), "??", "Surrounding whitespace is tolerated")
}

func TestRenderQuote(t *testing.T) {
	r := NewRenderer()

	assert.Contains(t, r.RenderQuote(nil), "no quote fetched yet")

	out := r.RenderQuote(&domain.Quote{Content: "Know thyself.", Author: "Socrates"})
	assert.Contains(t, out, "Know thyself.")
	assert.Contains(t, out, "Socrates")
}

func TestVisibleWindowKeepsCursorOnScreen(t *testing.T) {
	tests := []struct {
		name                       string
		total, cursor, height      int
		wantStart, wantEnd         int
	}{
		{"fits entirely", 5, 3, 10, 0, 5},
		{"cursor at top", 100, 0, 10, 0, 10},
		{"cursor in middle", 100, 50, 10, 45, 55},
		{"cursor at bottom", 100, 99, 10, 90, 100},
		{"zero height shows all", 3, 1, 0, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := visibleWindow(tt.total, tt.cursor, tt.height)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.GreaterOrEqual(t, tt.cursor, start)
			if tt.height > 0 && tt.total > tt.height {
				assert.Less(t, tt.cursor, end)
			}
		})
	}
}
