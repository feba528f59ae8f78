package entry

import "strings"

// ValidateTitle rejects titles that are empty after trimming whitespace.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// ValidateSegment rejects closed segments with an inverted time range.
func ValidateSegment(seg Segment) error {
	if seg.EndTime != nil && seg.EndTime.Before(seg.StartTime) {
		return ErrInvalidRange
	}
	return nil
}

// NormalizeTags trims tags, drops empties, and removes duplicates while
// preserving first-seen order for display.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
