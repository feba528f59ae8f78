package stats

import (
	"time"

	"github.com/nkall/chronotrack/internal/domain/entry"
)

// usable reports whether a segment takes part in aggregation. Open segments
// and degenerate durations are skipped rather than failing the computation.
func usable(seg entry.Segment) bool {
	return seg.EndTime != nil && seg.Duration > 0 && !seg.StartTime.IsZero()
}

// clip intersects a segment with the window, returning the overlap bounds.
// ok is false when they don't touch.
func clip(seg entry.Segment, w Window) (start, end time.Time, ok bool) {
	start = seg.StartTime
	if start.Before(w.Start) {
		start = w.Start
	}
	end = *seg.EndTime
	if !w.End.IsZero() && end.After(w.End) {
		end = w.End
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// bound clamps an unbounded (zero-Start) window to the first calendar day
// carrying a usable segment. Day-iterating aggregations call it so an
// all-time window walks recorded days, not every day since the zero time.
// With no usable segments the result is empty.
func bound(w Window, entries []entry.Entry) Window {
	if !w.Start.IsZero() {
		return w
	}
	var earliest time.Time
	for i := range entries {
		for _, seg := range entries[i].Segments {
			if !usable(seg) {
				continue
			}
			if earliest.IsZero() || seg.StartTime.Before(earliest) {
				earliest = seg.StartTime
			}
		}
	}
	if earliest.IsZero() {
		return Window{Start: w.End, End: w.End}
	}
	w.Start = StartOfDay(earliest)
	return w
}

// overlapSeconds is the clipped overlap of a segment with the window.
func overlapSeconds(seg entry.Segment, w Window) int64 {
	if !usable(seg) {
		return 0
	}
	start, end, ok := clip(seg, w)
	if !ok {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// windowSeconds sums the clipped overlap of all of an entry's segments.
func windowSeconds(e *entry.Entry, w Window) int64 {
	var total int64
	for _, seg := range e.Segments {
		total += overlapSeconds(seg, w)
	}
	return total
}
