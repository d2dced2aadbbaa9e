package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	raw := RawRect{Left: 200, Top: 100, Right: 1000, Bottom: 700}

	tests := []struct {
		name     string
		dpi      uint32
		expected Rect
	}{
		{
			name:     "base density is unchanged",
			dpi:      96,
			expected: Rect{Left: 200, Top: 100, Right: 1000, Bottom: 700},
		},
		{
			name:     "double density halves",
			dpi:      192,
			expected: Rect{Left: 100, Top: 50, Right: 500, Bottom: 350},
		},
		{
			name:     "150 percent",
			dpi:      144,
			expected: Rect{Left: 200.0 * 96 / 144, Top: 100.0 * 96 / 144, Right: 1000.0 * 96 / 144, Bottom: 700.0 * 96 / 144},
		},
		{
			name:     "failed density query is unscaled",
			dpi:      0,
			expected: Rect{Left: 200, Top: 100, Right: 1000, Bottom: 700},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize(raw, tt.dpi)
			assert.InDelta(t, tt.expected.Left, got.Left, 1e-9)
			assert.InDelta(t, tt.expected.Top, got.Top, 1e-9)
			assert.InDelta(t, tt.expected.Right, got.Right, 1e-9)
			assert.InDelta(t, tt.expected.Bottom, got.Bottom, 1e-9)
		})
	}
}

func TestNormalize_NegativeCoordinates(t *testing.T) {
	t.Parallel()

	got := Normalize(RawRect{Left: -1920, Top: -40, Right: -960, Bottom: 500}, 192)
	assert.Equal(t, Rect{Left: -960, Top: -20, Right: -480, Bottom: 250}, got)
	assert.Equal(t, 480.0, got.Width())
	assert.Equal(t, 270.0, got.Height())
}
