package database

import (
	"context"
	"fmt"

	"github.com/nao1215/threadscan/internal/model"
)

// StoredComment is one comment row. Reply is 0 for a thread and the 1-based
// reply position otherwise.
type StoredComment struct {
	Thread      int
	Reply       int
	Fingerprint string
	model.CommentRecord
}

// IsReply reports whether the comment is a reply.
func (c StoredComment) IsReply() bool {
	return c.Reply > 0
}

func (h *HistoryDB) queryComments(ctx context.Context, query string, args ...any) ([]StoredComment, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var out []StoredComment
	for rows.Next() {
		var c StoredComment
		if err := rows.Scan(&c.Thread, &c.Reply, &c.Fingerprint, &c.Commenter, &c.Content, &c.Link); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RunRecords rebuilds the thread tree emitted by a run.
func (h *HistoryDB) RunRecords(ctx context.Context, runID int64) ([]model.CommentRecord, error) {
	rows, err := h.queryComments(ctx, `
	SELECT thread_index, reply_index, fingerprint, commenter, content, link
	FROM comments WHERE run_id = ?
	ORDER BY thread_index, reply_index
	`, runID)
	if err != nil {
		return nil, err
	}

	var records []model.CommentRecord
	for _, c := range rows {
		if !c.IsReply() || len(records) == 0 {
			records = append(records, c.CommentRecord)
			continue
		}
		last := &records[len(records)-1]
		last.Children = append(last.Children, c.CommentRecord)
	}
	return records, nil
}

// Diff is the difference between the two latest runs of a source.
type Diff struct {
	Latest   *model.Run
	Previous *model.Run

	// Added holds the comments of Latest whose fingerprint does not occur in
	// Previous, in document order.
	Added []StoredComment
}

// Diff compares the two latest runs of source.
// It returns ErrNotEnoughRuns when fewer than two runs are stored.
func (h *HistoryDB) Diff(ctx context.Context, source string) (*Diff, error) {
	runs, err := h.ListRuns(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, fmt.Errorf("%w: %s has %d", ErrNotEnoughRuns, source, len(runs))
	}

	d := &Diff{Latest: runs[0], Previous: runs[1]}
	d.Added, err = h.queryComments(ctx, `
	SELECT thread_index, reply_index, fingerprint, commenter, content, link
	FROM comments
	WHERE run_id = ? AND fingerprint NOT IN (SELECT fingerprint FROM comments WHERE run_id = ?)
	ORDER BY thread_index, reply_index
	`, d.Latest.ID, d.Previous.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}
