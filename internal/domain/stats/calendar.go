package stats

import (
	"time"

	"github.com/nkall/chronotrack/internal/domain/entry"
)

// Minutes are accumulated per boundary-clipped chunk with floor semantics:
// a chunk shorter than a minute contributes nothing. Sub-minute loss at
// bucket edges is the accepted precision floor.

// DayBucket is the tracked minutes of one calendar day.
type DayBucket struct {
	Date    time.Time
	Minutes int64
}

// HourBucket is the tracked minutes of one hour-of-day across the window.
type HourBucket struct {
	Hour           int
	Minutes        int64
	AverageMinutes float64
}

// WeekdayBucket is the average tracked minutes of one weekday.
type WeekdayBucket struct {
	Weekday        time.Weekday
	AverageMinutes float64
	DaysWithData   int
}

// DailyTotals buckets in-window time per calendar day. Segments crossing
// midnight are split at each day boundary; every day in the window gets a
// bucket, idle days included.
func DailyTotals(entries []entry.Entry, w Window) []DayBucket {
	w = bound(w, entries)
	var buckets []DayBucket
	index := make(map[string]int)
	for d := StartOfDay(w.Start); d.Before(w.End); d = d.AddDate(0, 0, 1) {
		index[dayKey(d)] = len(buckets)
		buckets = append(buckets, DayBucket{Date: d})
	}

	for i := range entries {
		for _, seg := range entries[i].Segments {
			if !usable(seg) {
				continue
			}
			start, end, ok := clip(seg, w)
			if !ok {
				continue
			}
			for t := start; t.Before(end); {
				next := StartOfDay(t).AddDate(0, 0, 1)
				if next.After(end) {
					next = end
				}
				if at, ok := index[dayKey(t)]; ok {
					buckets[at].Minutes += next.Sub(t).Milliseconds() / 60000
				}
				t = next
			}
		}
	}
	return buckets
}

// HourOfDay distributes in-window time across the 24 hours of the day,
// walking each segment hour boundary by hour boundary. Averages divide by
// the number of calendar days in the window, so idle days pull the average
// down.
func HourOfDay(entries []entry.Entry, w Window) []HourBucket {
	w = bound(w, entries)
	var minutes [24]int64
	for i := range entries {
		for _, seg := range entries[i].Segments {
			if !usable(seg) {
				continue
			}
			start, end, ok := clip(seg, w)
			if !ok {
				continue
			}
			for t := start; t.Before(end); {
				next := startOfHour(t).Add(time.Hour)
				if next.After(end) {
					next = end
				}
				minutes[t.Hour()] += next.Sub(t).Milliseconds() / 60000
				t = next
			}
		}
	}

	days := w.Days()
	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h] = HourBucket{Hour: h, Minutes: minutes[h]}
		if days > 0 {
			buckets[h].AverageMinutes = float64(minutes[h]) / float64(days)
		}
	}
	return buckets
}

// WeekdayAverages averages daily totals per weekday. The denominator is the
// count of that weekday's occurrences in the window that carry any tracked
// time, so a window with one idle Monday and one busy Monday averages over
// the busy one alone.
func WeekdayAverages(entries []entry.Entry, w Window) []WeekdayBucket {
	var totals [7]int64
	var counts [7]int
	for _, day := range DailyTotals(entries, w) {
		if day.Minutes == 0 {
			continue
		}
		wd := day.Date.Weekday()
		totals[wd] += day.Minutes
		counts[wd]++
	}

	buckets := make([]WeekdayBucket, 7)
	for wd := range buckets {
		buckets[wd] = WeekdayBucket{Weekday: time.Weekday(wd), DaysWithData: counts[wd]}
		if counts[wd] > 0 {
			buckets[wd].AverageMinutes = float64(totals[wd]) / float64(counts[wd])
		}
	}
	return buckets
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func startOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
