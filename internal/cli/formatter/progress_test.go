package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name   string
		pct    float64
		width  int
		filled int
		label  string
	}{
		{"empty", 0, 10, 0, "  0%"},
		{"half", 0.5, 10, 5, " 50%"},
		{"full", 1, 10, 10, "100%"},
		{"over clamps", 1.7, 10, 10, "100%"},
		{"negative clamps", -1, 10, 0, "  0%"},
		{"tiny width", 0.5, 1, 1, " 50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(RenderProgress(tt.pct, tt.width))
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.True(t, strings.HasSuffix(got, tt.label), got)
		})
	}
}

func TestGoalProgress(t *testing.T) {
	assert.Equal(t, "no goal set", stripANSI(GoalProgress(time.Hour, 0, 10)))

	got := stripANSI(GoalProgress(2*time.Hour, 8*time.Hour, 8))
	assert.Equal(t, 2, strings.Count(got, filledBlock))
	assert.Contains(t, got, "25%")
}
