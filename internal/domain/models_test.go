package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateFrequencySeconds(t *testing.T) {
	tests := []struct {
		name    string
		minutes string
		want    int
	}{
		{"numeric", "12", 720},
		{"zero", "0", 0},
		{"whitespace", " 10 ", 600},
		{"non-numeric", "abc", 0},
		{"empty", "", 0},
		{"trailing garbage", "5m", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := CardConfig{UpdateMinutes: tt.minutes}
			assert.Equal(t, tt.want, cfg.UpdateFrequencySeconds())
		})
	}
}

func TestSlugsPreservesOrder(t *testing.T) {
	candidates := []Candidate{
		{Name: "Marcus Aurelius", Slug: "marcus-aurelius"},
		{Name: "Seneca", Slug: "seneca"},
		{Name: "Epictetus", Slug: "epictetus"},
	}

	assert.Equal(t, []string{"marcus-aurelius", "seneca", "epictetus"}, Slugs(candidates))
	assert.Empty(t, Slugs(nil))
}
