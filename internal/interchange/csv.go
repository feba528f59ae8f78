// Package interchange moves entries in and out of a CSV format that
// round-trips every field: title, notes, tags, segments with full timestamp
// precision, and the hierarchy columns.
package interchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/repository"
)

var header = []string{
	"id", "parent_id", "title", "notes", "tags", "path",
	"depth", "child_count", "duration_sec", "active",
	"created_at", "updated_at", "segments",
}

const (
	listSep    = "|"
	segPartSep = "/"
)

// Export writes all entries as CSV.
func Export(ctx context.Context, repo repository.EntryRepository, w io.Writer) error {
	entries, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range entries {
		if err := cw.Write(encodeRow(&entries[i])); err != nil {
			return fmt.Errorf("writing entry %s: %w", entries[i].ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import reads CSV rows and inserts the entries into the store in one
// transaction, parents before children so the parent foreign key holds.
func Import(ctx context.Context, repo repository.EntryRepository, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	rows, err := cr.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if rows[0][0] == "id" {
		rows = rows[1:]
	}

	entries := make([]entry.Entry, 0, len(rows))
	for i, row := range rows {
		e, err := decodeRow(row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, *e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Depth < entries[j].Depth
	})

	err = repo.InTx(ctx, func(tx repository.EntryRepository) error {
		for i := range entries {
			if err := tx.Create(ctx, &entries[i]); err != nil {
				return fmt.Errorf("importing entry %s: %w", entries[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func encodeRow(e *entry.Entry) []string {
	parent := ""
	if e.ParentID != nil {
		parent = *e.ParentID
	}
	return []string{
		e.ID,
		parent,
		e.Title,
		e.Notes,
		strings.Join(e.Tags, listSep),
		strings.Join(e.Path, listSep),
		strconv.Itoa(e.Depth),
		strconv.Itoa(e.ChildCount),
		strconv.FormatInt(e.Duration, 10),
		strconv.FormatBool(e.Active),
		e.CreatedAt.Format(time.RFC3339Nano),
		e.UpdatedAt.Format(time.RFC3339Nano),
		encodeSegments(e.Segments),
	}
}

func decodeRow(row []string) (*entry.Entry, error) {
	e := entry.Entry{
		ID:    row[0],
		Title: row[2],
		Notes: row[3],
	}
	if row[1] != "" {
		parent := row[1]
		e.ParentID = &parent
	}
	if row[4] != "" {
		e.Tags = strings.Split(row[4], listSep)
	}
	if row[5] != "" {
		e.Path = strings.Split(row[5], listSep)
	}

	var err error
	if e.Depth, err = strconv.Atoi(row[6]); err != nil {
		return nil, fmt.Errorf("parsing depth: %w", err)
	}
	if e.ChildCount, err = strconv.Atoi(row[7]); err != nil {
		return nil, fmt.Errorf("parsing child count: %w", err)
	}
	if e.Duration, err = strconv.ParseInt(row[8], 10, 64); err != nil {
		return nil, fmt.Errorf("parsing duration: %w", err)
	}
	if e.Active, err = strconv.ParseBool(row[9]); err != nil {
		return nil, fmt.Errorf("parsing active flag: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, row[10]); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, row[11]); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if e.Segments, err = decodeSegments(row[12]); err != nil {
		return nil, err
	}
	return &e, nil
}

func encodeSegments(segments []entry.Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		end := ""
		if seg.EndTime != nil {
			end = seg.EndTime.Format(time.RFC3339Nano)
		}
		parts[i] = seg.StartTime.Format(time.RFC3339Nano) +
			segPartSep + end +
			segPartSep + strconv.FormatInt(seg.Duration, 10)
	}
	return strings.Join(parts, listSep)
}

func decodeSegments(raw string) ([]entry.Segment, error) {
	if raw == "" {
		return nil, nil
	}
	var segments []entry.Segment
	for _, part := range strings.Split(raw, listSep) {
		fields := strings.Split(part, segPartSep)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed segment %q", part)
		}
		var seg entry.Segment
		var err error
		if seg.StartTime, err = time.Parse(time.RFC3339Nano, fields[0]); err != nil {
			return nil, fmt.Errorf("parsing segment start: %w", err)
		}
		if fields[1] != "" {
			end, err := time.Parse(time.RFC3339Nano, fields[1])
			if err != nil {
				return nil, fmt.Errorf("parsing segment end: %w", err)
			}
			seg.EndTime = &end
		}
		if seg.Duration, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
			return nil, fmt.Errorf("parsing segment duration: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
