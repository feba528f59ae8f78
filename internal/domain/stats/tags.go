package stats

import (
	"sort"

	"github.com/nkall/chronotrack/internal/domain/entry"
)

// UntaggedBucket collects time from entries carrying no tags.
const UntaggedBucket = "Untagged"

// TagTotal is the in-window time attributed to one tag.
type TagTotal struct {
	Tag     string
	Seconds int64
}

// TagTotals attributes each entry's full in-window duration to every tag it
// carries; an entry tagged {A,B} counts fully toward both A and B. Tagless
// entries land in the Untagged bucket. Results sort descending by seconds,
// ties broken by tag name for stable output.
func TagTotals(entries []entry.Entry, w Window) []TagTotal {
	totals := make(map[string]int64)
	for i := range entries {
		seconds := windowSeconds(&entries[i], w)
		if seconds == 0 {
			continue
		}
		if len(entries[i].Tags) == 0 {
			totals[UntaggedBucket] += seconds
			continue
		}
		for _, tag := range entries[i].Tags {
			totals[tag] += seconds
		}
	}

	out := make([]TagTotal, 0, len(totals))
	for tag, seconds := range totals {
		out = append(out, TagTotal{Tag: tag, Seconds: seconds})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
