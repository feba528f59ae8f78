package stats

import (
	"github.com/nkall/chronotrack/internal/domain/entry"
)

// DefaultMovingWindow is the trailing window for moving averages.
const DefaultMovingWindow = 7

// SeriesPoint is one chart-ready bucket.
type SeriesPoint struct {
	Label         string
	Value         float64
	MovingAverage *float64
}

// MovingAverage computes an n-point trailing simple moving average over a
// chronologically ordered series. Points before n values have accumulated
// carry nil, not zero.
func MovingAverage(values []float64, n int) []*float64 {
	if n <= 0 {
		n = DefaultMovingWindow
	}
	out := make([]*float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			avg := sum / float64(n)
			out[i] = &avg
		}
	}
	return out
}

// DailySeries turns daily totals into a labeled series with a trailing
// moving average attached.
func DailySeries(entries []entry.Entry, w Window, movingWindow int) []SeriesPoint {
	days := DailyTotals(entries, w)
	values := make([]float64, len(days))
	for i, day := range days {
		values[i] = float64(day.Minutes)
	}
	averages := MovingAverage(values, movingWindow)

	points := make([]SeriesPoint, len(days))
	for i, day := range days {
		points[i] = SeriesPoint{
			Label:         dayKey(day.Date),
			Value:         values[i],
			MovingAverage: averages[i],
		}
	}
	return points
}
