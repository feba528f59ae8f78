package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the repository can run
// inside or outside a transaction with the same code.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EntryRepository implements repository.EntryRepository for SQLite
type EntryRepository struct {
	db *DB
	q  querier
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db, q: db.DB}
}

func encodePath(path []string) string {
	return strings.Join(path, "/")
}

func decodePath(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "/")
}

// Create creates a new entry with its segments and tags
func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	query := `
		INSERT INTO entries (
			id, title, notes, parent_id, path, depth, child_count,
			duration, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Notes,
		e.ParentID,
		encodePath(e.Path),
		e.Depth,
		e.ChildCount,
		e.Duration,
		e.Active,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create entry: %w", err)
	}

	if err := r.insertSegments(ctx, e.ID, e.Segments); err != nil {
		return err
	}
	return r.insertTags(ctx, e.ID, e.Tags)
}

// Get retrieves an entry by ID with its segments and tags
func (r *EntryRepository) Get(ctx context.Context, id string) (*entry.Entry, error) {
	query := `
		SELECT id, title, notes, parent_id, path, depth, child_count,
		       duration, active, created_at, updated_at
		FROM entries
		WHERE id = ?
	`

	e, err := r.scanEntry(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadDetails(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update rewrites an entry's row, segments, and tags. The in-memory entry is
// authoritative; this is used for edits and imports, not the timer hot path.
func (r *EntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	query := `
		UPDATE entries
		SET title = ?, notes = ?, parent_id = ?, path = ?, depth = ?,
		    child_count = ?, duration = ?, active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query,
		e.Title,
		e.Notes,
		e.ParentID,
		encodePath(e.Path),
		e.Depth,
		e.ChildCount,
		e.Duration,
		e.Active,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to update entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM segments WHERE entry_id = ?`, e.ID); err != nil {
		return fmt.Errorf("failed to clear segments: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, e.ID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	if err := r.insertSegments(ctx, e.ID, e.Segments); err != nil {
		return err
	}
	return r.insertTags(ctx, e.ID, e.Tags)
}

// Delete deletes an entry. Segments and tags cascade; children must be
// re-parented first or the parent_id foreign key rejects the delete.
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns all entries with segments and tags attached
func (r *EntryRepository) List(ctx context.Context) ([]entry.Entry, error) {
	return r.list(ctx, `ORDER BY created_at ASC`)
}

// ListRecent returns entries ordered by updated_at descending
func (r *EntryRepository) ListRecent(ctx context.Context, limit int) ([]entry.Entry, error) {
	return r.list(ctx, fmt.Sprintf(`ORDER BY updated_at DESC LIMIT %d`, limit))
}

// ListChildren returns the direct children of an entry
func (r *EntryRepository) ListChildren(ctx context.Context, parentID string) ([]entry.Entry, error) {
	return r.list(ctx, `ORDER BY created_at ASC`, "parent_id = ?", parentID)
}

// AppendSegment adds a segment after the entry's existing ones
func (r *EntryRepository) AppendSegment(ctx context.Context, entryID string, seg entry.Segment) error {
	query := `
		INSERT INTO segments (entry_id, seq, start_time, end_time, duration)
		VALUES (?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM segments WHERE entry_id = ?), ?, ?, ?)
	`

	var end any
	if seg.EndTime != nil {
		end = *seg.EndTime
	}
	if _, err := r.q.ExecContext(ctx, query, entryID, entryID, seg.StartTime, end, seg.Duration); err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to append segment: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, `UPDATE entries SET updated_at = ? WHERE id = ?`, time.Now(), entryID); err != nil {
		return fmt.Errorf("failed to touch entry: %w", err)
	}
	return nil
}

// CloseSegment closes the entry's open segment and recomputes the cached
// duration from segments. No-op when no segment is open.
func (r *EntryRepository) CloseSegment(ctx context.Context, entryID string, end time.Time) error {
	var seq int64
	var start time.Time
	err := r.q.QueryRowContext(ctx,
		`SELECT seq, start_time FROM segments WHERE entry_id = ? AND end_time IS NULL`,
		entryID,
	).Scan(&seq, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find open segment: %w", err)
	}

	if end.Before(start) {
		end = start
	}
	duration := int64(end.Sub(start) / time.Second)

	_, err = r.q.ExecContext(ctx,
		`UPDATE segments SET end_time = ?, duration = ? WHERE entry_id = ? AND seq = ?`,
		end, duration, entryID, seq,
	)
	if err != nil {
		return fmt.Errorf("failed to close segment: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `
		UPDATE entries
		SET duration = (SELECT COALESCE(SUM(duration), 0) FROM segments WHERE entry_id = ?),
		    updated_at = ?
		WHERE id = ?
	`, entryID, time.Now(), entryID)
	if err != nil {
		return fmt.Errorf("failed to refresh duration: %w", err)
	}
	return nil
}

// SetActive flips the active flag without touching segments
func (r *EntryRepository) SetActive(ctx context.Context, entryID string, active bool) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE entries SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now(), entryID,
	)
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// FindOpenSegmentEntry returns the entry owning the single open segment
func (r *EntryRepository) FindOpenSegmentEntry(ctx context.Context) (*entry.Entry, error) {
	var id string
	err := r.q.QueryRowContext(ctx,
		`SELECT entry_id FROM segments WHERE end_time IS NULL LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open segment: %w", err)
	}
	return r.Get(ctx, id)
}

// FindActiveEntry returns the most recently updated active entry
func (r *EntryRepository) FindActiveEntry(ctx context.Context) (*entry.Entry, error) {
	var id string
	err := r.q.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE active = 1 ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active entry: %w", err)
	}
	return r.Get(ctx, id)
}

// FlushRunningDuration overwrites the cached duration for display continuity
func (r *EntryRepository) FlushRunningDuration(ctx context.Context, entryID string, total int64) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE entries SET duration = ?, updated_at = ? WHERE id = ?`,
		total, time.Now(), entryID,
	)
	if err != nil {
		return fmt.Errorf("failed to flush duration: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// InTx runs fn inside a transaction. When the repository is already
// transactional the callback reuses the current transaction.
func (r *EntryRepository) InTx(ctx context.Context, fn func(repository.EntryRepository) error) error {
	if _, ok := r.q.(*sql.Tx); ok {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txRepo := &EntryRepository{db: r.db, q: tx}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *EntryRepository) list(ctx context.Context, order string, where ...any) ([]entry.Entry, error) {
	query := `
		SELECT id, title, notes, parent_id, path, depth, child_count,
		       duration, active, created_at, updated_at
		FROM entries
	`
	var args []any
	if len(where) > 0 {
		query += " WHERE " + where[0].(string)
		args = where[1:]
	}
	query += " " + order

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []entry.Entry
	for rows.Next() {
		e, err := r.scanEntryRows(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	for i := range entries {
		if err := r.loadDetails(ctx, &entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EntryRepository) scanEntry(row *sql.Row) (*entry.Entry, error) {
	e, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

func (r *EntryRepository) scanEntryRows(rows *sql.Rows) (*entry.Entry, error) {
	e, err := scanInto(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	return e, nil
}

func scanInto(s rowScanner) (*entry.Entry, error) {
	var e entry.Entry
	var rawPath string
	if err := s.Scan(
		&e.ID,
		&e.Title,
		&e.Notes,
		&e.ParentID,
		&rawPath,
		&e.Depth,
		&e.ChildCount,
		&e.Duration,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Path = decodePath(rawPath)
	return &e, nil
}

func (r *EntryRepository) loadDetails(ctx context.Context, e *entry.Entry) error {
	segRows, err := r.q.QueryContext(ctx,
		`SELECT start_time, end_time, duration FROM segments WHERE entry_id = ? ORDER BY seq ASC`,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load segments: %w", err)
	}
	defer segRows.Close()

	e.Segments = nil
	for segRows.Next() {
		var seg entry.Segment
		var end sql.NullTime
		if err := segRows.Scan(&seg.StartTime, &end, &seg.Duration); err != nil {
			return fmt.Errorf("failed to scan segment: %w", err)
		}
		if end.Valid {
			t := end.Time
			seg.EndTime = &t
		}
		e.Segments = append(e.Segments, seg)
	}
	if err := segRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate segments: %w", err)
	}

	tagRows, err := r.q.QueryContext(ctx,
		`SELECT tag FROM entry_tags WHERE entry_id = ? ORDER BY position ASC`,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	defer tagRows.Close()

	e.Tags = nil
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		e.Tags = append(e.Tags, tag)
	}
	return tagRows.Err()
}

func (r *EntryRepository) insertSegments(ctx context.Context, entryID string, segments []entry.Segment) error {
	for i, seg := range segments {
		var end any
		if seg.EndTime != nil {
			end = *seg.EndTime
		}
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO segments (entry_id, seq, start_time, end_time, duration) VALUES (?, ?, ?, ?, ?)`,
			entryID, i, seg.StartTime, end, seg.Duration,
		)
		if err != nil {
			return fmt.Errorf("failed to insert segment: %w", err)
		}
	}
	return nil
}

func (r *EntryRepository) insertTags(ctx context.Context, entryID string, tags []string) error {
	for i, tag := range tags {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO entry_tags (entry_id, position, tag) VALUES (?, ?, ?)`,
			entryID, i, tag,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	return nil
}
