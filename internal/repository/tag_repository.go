package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// TagRepo provides access to the 'tag' table and its book_tag join.
// Tags form a tree via pid like categories do.
type TagRepo struct{ DB *sql.DB }

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{DB: db} }

// Create inserts a tag, attaches it to the book, and returns its ID.
func (r *TagRepo) Create(ctx context.Context, bookID uint64, t *model.Tag) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tag (name, remark, seq, pid) VALUES (?,?,?,?)",
		t.Name, nullable(t.Remark), t.Seq, t.PID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	t.ID = uint64(id)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO book_tag (book_id, tag_id) VALUES (?,?)", bookID, t.ID); err != nil {
		return 0, err
	}
	return t.ID, tx.Commit()
}

// GetByID fetches a tag by id.
func (r *TagRepo) GetByID(ctx context.Context, id uint64) (model.Tag, error) {
	var t model.Tag
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, COALESCE(remark,''), seq, pid FROM tag WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.Name, &t.Remark, &t.Seq, &t.PID)
	return t, err
}

// ListByBook returns the tags attached to a book in configured order.
func (r *TagRepo) ListByBook(ctx context.Context, bookID uint64) ([]model.Tag, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT t.id, t.name, COALESCE(t.remark,''), t.seq, t.pid "+
			"FROM tag t JOIN book_tag bt ON bt.tag_id=t.id WHERE bt.book_id=? ORDER BY t.seq, t.id",
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Remark, &t.Seq, &t.PID); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Update applies the non-nil fields of upd to the tag row.
func (r *TagRepo) Update(ctx context.Context, id uint64, upd model.TagUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Remark != nil {
		sets = append(sets, "remark=?")
		args = append(args, nullable(*upd.Remark))
	}
	if upd.Seq != nil {
		sets = append(sets, "seq=?")
		args = append(args, *upd.Seq)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tag SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// Delete removes a tag and, via cascade, its children and any tally_tag
// joins pointing at them.
func (r *TagRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tag WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
