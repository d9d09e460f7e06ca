package adjudication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Rajesh Kumar", "Rajesh Kumar", 100},
		{"case and spacing", "  RAJESH   kumar ", "Rajesh Kumar", 100},
		{"token order", "Kumar, Rajesh", "Rajesh Kumar", 100},
		{"honorific", "Dr. Rajesh Kumar", "Rajesh Kumar", 100},
		{"initial", "R. Kumar", "Rajesh Kumar", 100},
		{"omitted middle name", "Rajesh Sharma", "Rajesh Kumar Sharma", 100},
		{"diacritics", "José Kumar", "Jose Kumar", 100},
		{"similar first name", "Rajiv Kumar", "Rajesh Kumar", 78.26},
		{"typo", "Jon Doe", "John Doe", 93.33},
		{"empty", "", "Rajesh Kumar", 0},
		{"honorific only", "Mr.", "Rajesh Kumar", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NameScore(tt.a, tt.b), 0.001)
		})
	}

	t.Run("different person", func(t *testing.T) {
		assert.Less(t, NameScore("Priya Sharma", "Rajesh Kumar"), 70.0)
	})
	t.Run("dropped letter passes", func(t *testing.T) {
		assert.GreaterOrEqual(t, NameScore("Jon Doe", "John Doe"), DefaultConfig().Identity.PassScore)
	})
	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, NameScore("R. Kumar", "Rajesh Kumar"), NameScore("Rajesh Kumar", "R. Kumar"))
	})
}

func TestIdentityResult(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		score  float64
		status Status
		code   string
	}{
		{100, StatusPass, ""},
		{90, StatusPass, ""},
		{89.99, StatusPartial, CodeNamePartialMatch},
		{70, StatusPartial, CodeNamePartialMatch},
		{69.99, StatusFail, CodeNameMismatch},
		{0, StatusFail, CodeNameMismatch},
	}
	for _, tt := range tests {
		res := identityResult(cfg, tt.score, "claimant", "holder")
		assert.Equal(t, tt.status, res.Status, "score %.2f", tt.score)
		assert.Equal(t, tt.score, res.Score)
		if tt.code == "" {
			assert.Empty(t, res.Findings)
			continue
		}
		if assert.Len(t, res.Findings, 1) {
			assert.Equal(t, tt.code, res.Findings[0].Code)
		}
	}
}
