package adjudication

import (
	"fmt"
	"math"
	"time"
)

// paise is an amount in hundredths of a rupee. All limit arithmetic runs in
// paise so deductions add back to the claimed amount exactly.
type paise int64

func toPaise(rupees float64) paise {
	if rupees <= 0 || math.IsNaN(rupees) || math.IsInf(rupees, 0) {
		return 0
	}
	return paise(math.Round(rupees * 100))
}

func fromPaise(p paise) float64 {
	return float64(p) / 100
}

func (p paise) mulRate(rate float64) paise {
	return paise(math.Round(float64(p) * rate))
}

func (p paise) String() string {
	return fmt.Sprintf("₹%.2f", fromPaise(p))
}

func minPaise(a, b paise) paise {
	if a < b {
		return a
	}
	return b
}

func roundTo(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// civil drops the clock so day arithmetic is not skewed by time of day.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b (negative if b is earlier).
func daysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
