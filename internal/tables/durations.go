package tables

import (
	"github.com/HdrHistogram/hdrhistogram-go"

	"shoplens/internal/entities"
	"shoplens/internal/metrics"
)

// DurationPercentiles summarizes the session duration distribution in minutes.
type DurationPercentiles struct {
	Sessions int     `json:"sessions"`
	P50Min   float64 `json:"p50_min"`
	P90Min   float64 `json:"p90_min"`
	P99Min   float64 `json:"p99_min"`
	MaxMin   float64 `json:"max_min"`
}

// durations are recorded in the histogram as whole seconds; sessions rarely
// exceed a few hours, a day is plenty of headroom.
const maxDurationSeconds = 24 * 60 * 60

// SessionDurationPercentiles builds the duration distribution over sessions
// with at least one pageview.
func SessionDurationPercentiles(pageviews []entities.Pageview) DurationPercentiles {
	durations := metrics.SessionDurations(pageviews)
	if len(durations) == 0 {
		return DurationPercentiles{}
	}
	hist := hdrhistogram.New(1, maxDurationSeconds, 3)
	for _, minutes := range durations {
		seconds := int64(minutes * 60)
		if seconds > maxDurationSeconds {
			seconds = maxDurationSeconds
		}
		_ = hist.RecordValue(seconds)
	}
	return DurationPercentiles{
		Sessions: len(durations),
		P50Min:   round2(float64(hist.ValueAtQuantile(50)) / 60),
		P90Min:   round2(float64(hist.ValueAtQuantile(90)) / 60),
		P99Min:   round2(float64(hist.ValueAtQuantile(99)) / 60),
		MaxMin:   round2(float64(hist.Max()) / 60),
	}
}
