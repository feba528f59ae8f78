package entry

import "time"

// Segment is one contiguous stretch of tracked time. An open segment has a
// nil EndTime and zero Duration; closing it sets both. At most one segment
// across the whole store may be open at any moment.
type Segment struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  int64      `json:"duration_sec"`
}

// Open reports whether the segment is still running.
func (s Segment) Open() bool {
	return s.EndTime == nil
}

// Close sets the segment end and derives its duration in whole seconds.
// Closing an already-closed segment is a no-op.
func (s *Segment) Close(end time.Time) {
	if s.EndTime != nil {
		return
	}
	if end.Before(s.StartTime) {
		end = s.StartTime
	}
	s.EndTime = &end
	s.Duration = int64(end.Sub(s.StartTime) / time.Second)
}

// Entry is a tracked project. Entries form a tree through ParentID; Path is
// the full ancestor chain from root to immediate parent and Depth equals
// len(Path). Duration is a cached sum of segment durations, recomputable at
// any time via TotalSeconds.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes"`
	Tags       []string  `json:"tags"`
	ParentID   *string   `json:"parent_id,omitempty"`
	Path       []string  `json:"path"`
	Depth      int       `json:"depth"`
	ChildCount int       `json:"child_count"`
	Segments   []Segment `json:"segments"`
	Duration   int64     `json:"duration_sec"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TotalSeconds recomputes the entry duration from its segments.
func (e *Entry) TotalSeconds() int64 {
	var total int64
	for _, seg := range e.Segments {
		total += seg.Duration
	}
	return total
}

// OpenSegment returns a pointer to the entry's open segment, or nil.
func (e *Entry) OpenSegment() *Segment {
	for i := range e.Segments {
		if e.Segments[i].Open() {
			return &e.Segments[i]
		}
	}
	return nil
}

// HasAncestor reports whether id appears in the entry's ancestor path.
func (e *Entry) HasAncestor(id string) bool {
	for _, ancestor := range e.Path {
		if ancestor == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so callers can mutate snapshots freely.
func (e *Entry) Clone() *Entry {
	dup := *e
	dup.Tags = append([]string(nil), e.Tags...)
	dup.Path = append([]string(nil), e.Path...)
	dup.Segments = make([]Segment, len(e.Segments))
	for i, seg := range e.Segments {
		dup.Segments[i] = seg
		if seg.EndTime != nil {
			end := *seg.EndTime
			dup.Segments[i].EndTime = &end
		}
	}
	if e.ParentID != nil {
		parent := *e.ParentID
		dup.ParentID = &parent
	}
	return &dup
}
