package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// TallyRepo provides access to the 'tally' table and its tally_tag join.
type TallyRepo struct{ DB *sql.DB }

func NewTallyRepo(db *sql.DB) *TallyRepo { return &TallyRepo{DB: db} }

const tallyColumns = "id, amount, record_timestamp, COALESCE(remark,''), book_id, category_id, account_id"

// Create inserts a tally and its tag joins in one transaction and
// returns the new ID.
func (r *TallyRepo) Create(ctx context.Context, t *model.Tally) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tally (amount, record_timestamp, remark, book_id, category_id, account_id) VALUES (?,?,?,?,?,?)",
		t.Amount, t.RecordTimestamp, nullable(t.Remark), t.BookID, t.CategoryID, t.AccountID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	t.ID = uint64(id)
	if err := replaceTagsTx(ctx, tx, t.ID, t.TagIDs); err != nil {
		return 0, err
	}
	return t.ID, tx.Commit()
}

func replaceTagsTx(ctx context.Context, tx *sql.Tx, tallyID uint64, tagIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM tally_tag WHERE tally_id=?", tallyID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	query := "INSERT INTO tally_tag (tally_id, tag_id) VALUES "
	args := make([]any, 0, len(tagIDs)*2)
	for i, tid := range tagIDs {
		if i > 0 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, tallyID, tid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches a tally with its tag IDs.
func (r *TallyRepo) GetByID(ctx context.Context, id uint64) (model.Tally, error) {
	var t model.Tally
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+tallyColumns+" FROM tally WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.Amount, &t.RecordTimestamp, &t.Remark, &t.BookID, &t.CategoryID, &t.AccountID)
	if err != nil {
		return t, err
	}
	t.TagIDs, err = r.tagIDs(ctx, t.ID)
	return t, err
}

func (r *TallyRepo) tagIDs(ctx context.Context, tallyID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT tag_id FROM tally_tag WHERE tally_id=? ORDER BY tag_id", tallyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByBookRange returns the tallies of a book whose record_timestamp
// falls in [start, end], oldest first.  The range scan rides the
// record_timestamp index.
func (r *TallyRepo) ListByBookRange(ctx context.Context, bookID uint64, start, end int64) ([]model.Tally, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tallyColumns+" FROM tally WHERE book_id=? AND record_timestamp BETWEEN ? AND ? ORDER BY record_timestamp, id",
		bookID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tallies []model.Tally
	for rows.Next() {
		var t model.Tally
		if err := rows.Scan(&t.ID, &t.Amount, &t.RecordTimestamp, &t.Remark, &t.BookID, &t.CategoryID, &t.AccountID); err != nil {
			return nil, err
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range tallies {
		ids, err := r.tagIDs(ctx, tallies[i].ID)
		if err != nil {
			return nil, err
		}
		tallies[i].TagIDs = ids
	}
	return tallies, nil
}

// Update applies the non-nil fields of upd to the tally row, rewriting
// the tag joins when TagIDs is present.
func (r *TallyRepo) Update(ctx context.Context, id uint64, upd model.TallyUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if upd.Amount != nil {
		sets = append(sets, "amount=?")
		args = append(args, *upd.Amount)
	}
	if upd.RecordTimestamp != nil {
		sets = append(sets, "record_timestamp=?")
		args = append(args, *upd.RecordTimestamp)
	}
	if upd.Remark != nil {
		sets = append(sets, "remark=?")
		args = append(args, nullable(*upd.Remark))
	}
	if upd.CategoryID != nil {
		sets = append(sets, "category_id=?")
		args = append(args, *upd.CategoryID)
	}
	if upd.AccountID != nil {
		sets = append(sets, "account_id=?")
		args = append(args, *upd.AccountID)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE tally SET "+strings.Join(sets, ",")+" WHERE id=?", args...); err != nil {
			return err
		}
	}
	if upd.TagIDs != nil {
		if err := replaceTagsTx(ctx, tx, id, *upd.TagIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a tally; its tally_tag rows cascade.
func (r *TallyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tally WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
