package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/threadscan/internal/model"
)

// Recorder saves one run and its comments inside a transaction.
// Records are written as they are emitted; Close stores the final run
// statistics and commits.
type Recorder struct {
	tx     *sql.Tx
	stmt   *sql.Stmt
	run    *model.Run
	thread int
	done   bool
}

// BeginRun inserts run and returns a Recorder for its comments.
// run.ID is set to the new row id. The Recorder reads the final state of run
// when it is closed.
//
// The transaction outlives cancellation of ctx, so that an interrupted run is
// still recorded with its final state.
func (h *HistoryDB) BeginRun(ctx context.Context, run *model.Run) (*Recorder, error) {
	ctx = context.WithoutCancel(ctx)
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
	INSERT INTO runs (source, variant, pattern, limit_count, deadline_ms, started_at, end_reason, output)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	var limit sql.NullInt64
	if run.Limit != nil {
		limit = sql.NullInt64{Int64: int64(*run.Limit), Valid: true}
	}
	res, err := tx.ExecContext(ctx, query,
		run.Source,
		run.Variant,
		run.Pattern,
		limit,
		run.Deadline.Milliseconds(),
		formatTimestamp(run.StartedAt),
		string(run.EndReason),
		run.Output,
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to get run id: %w", err)
	}
	run.ID = id

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO comments (run_id, thread_index, reply_index, fingerprint, commenter, content, link)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to prepare comment insert: %w", err)
	}

	return &Recorder{tx: tx, stmt: stmt, run: run}, nil
}

// Write stores rec and its replies.
func (r *Recorder) Write(rec model.CommentRecord) error {
	if r.done {
		return errors.New("recorder is closed")
	}
	r.thread++
	if err := r.insert(r.thread, 0, rec); err != nil {
		return err
	}
	for i, reply := range rec.Children {
		if err := r.insert(r.thread, i+1, reply); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) insert(thread, reply int, rec model.CommentRecord) error {
	_, err := r.stmt.Exec(r.run.ID, thread, reply, rec.Fingerprint(), rec.Commenter, rec.Content, rec.Link)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// Close updates the run with its final statistics and commits.
func (r *Recorder) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	defer r.stmt.Close()

	query := `
	UPDATE runs SET
		variant = ?, started_at = ?, finished_at = ?, page_title = ?, advertised_count = ?,
		parsed = ?, emitted = ?, suppressed = ?, threads = ?, replies = ?,
		end_reason = ?, error = ?, output = ?
	WHERE id = ?
	`
	run := r.run
	_, err := r.tx.Exec(query,
		run.Variant,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.PageTitle,
		run.AdvertisedCount,
		run.Parsed,
		run.Emitted,
		run.Suppressed,
		run.Threads,
		run.Replies,
		string(run.EndReason),
		run.Error,
		run.Output,
		run.ID,
	)
	if err != nil {
		_ = r.tx.Rollback()
		return fmt.Errorf("failed to update run: %w", err)
	}
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Abort discards the run and every comment written so far.
func (r *Recorder) Abort() error {
	if r.done {
		return nil
	}
	r.done = true
	_ = r.stmt.Close()
	return r.tx.Rollback()
}

// SaveRun stores a finished run with its records in one call.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run, records []model.CommentRecord) error {
	rec, err := h.BeginRun(ctx, run)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := rec.Write(r); err != nil {
			_ = rec.Abort()
			return err
		}
	}
	return rec.Close()
}

// SourceSummary describes the stored runs of one source.
type SourceSummary struct {
	// Source is the source reference.
	Source string

	// Variant is the variant used by the latest run.
	Variant string

	// Runs is the number of stored runs.
	Runs int

	// LastRun is when the latest run started.
	LastRun time.Time
}

// ListSources returns every source with at least one run, ordered by source.
func (h *HistoryDB) ListSources(ctx context.Context) ([]SourceSummary, error) {
	query := `
	SELECT r.source, r.variant, c.runs, r.started_at
	FROM runs r
	JOIN (SELECT source, COUNT(*) AS runs, MAX(id) AS last_id FROM runs GROUP BY source) c
		ON r.id = c.last_id
	ORDER BY r.source
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceSummary
	for rows.Next() {
		var s SourceSummary
		var started sql.NullString
		if err := rows.Scan(&s.Source, &s.Variant, &s.Runs, &started); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		s.LastRun = parseTimestamp(started.String)
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

const runColumns = `id, source, variant, pattern, limit_count, deadline_ms, started_at, finished_at,
	page_title, advertised_count, parsed, emitted, suppressed, threads, replies, end_reason, error, output`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var (
		run                          model.Run
		pattern, title, errMsg, out  sql.NullString
		started, finished, endReason sql.NullString
		limit                        sql.NullInt64
		deadlineMS                   int64
	)
	err := row.Scan(
		&run.ID, &run.Source, &run.Variant, &pattern, &limit, &deadlineMS, &started, &finished,
		&title, &run.AdvertisedCount, &run.Parsed, &run.Emitted, &run.Suppressed,
		&run.Threads, &run.Replies, &endReason, &errMsg, &out,
	)
	if err != nil {
		return nil, err
	}
	run.Pattern = pattern.String
	if limit.Valid {
		n := int(limit.Int64)
		run.Limit = &n
	}
	run.Deadline = time.Duration(deadlineMS) * time.Millisecond
	run.StartedAt = parseTimestamp(started.String)
	run.FinishedAt = parseTimestamp(finished.String)
	run.PageTitle = title.String
	run.EndReason = model.EndReason(endReason.String)
	run.Error = errMsg.String
	run.Output = out.String
	return &run, nil
}

// ListRuns returns the runs of source, newest first. An empty source lists
// every run.
func (h *HistoryDB) ListRuns(ctx context.Context, source string) ([]*model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE (? = '' OR source = ?) ORDER BY id DESC`

	rows, err := h.db.QueryContext(ctx, query, source, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given id, or nil when there is none.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}
