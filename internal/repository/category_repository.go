package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// CategoryRepo provides access to the 'category' table and its
// book_category join.  Categories form a tree via pid; children are
// removed with their parent by the schema's cascade rule.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

const categoryColumns = "id, name, type, COALESCE(icon,''), COALESCE(remark,''), seq, pid"

// Create inserts a category, attaches it to the book, and returns its
// ID.  Both inserts run in one transaction so a category never floats
// outside a book.
func (r *CategoryRepo) Create(ctx context.Context, bookID uint64, c *model.Category) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO category (name, type, icon, remark, seq, pid) VALUES (?,?,?,?,?,?)",
		c.Name, c.Type, nullable(c.Icon), nullable(c.Remark), c.Seq, c.PID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = uint64(id)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO book_category (book_id, category_id) VALUES (?,?)", bookID, c.ID); err != nil {
		return 0, err
	}
	return c.ID, tx.Commit()
}

// GetByID fetches a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM category WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Remark, &c.Seq, &c.PID)
	return c, err
}

// ListByBook returns the categories attached to a book, ordered by seq
// then id so the client renders them in their configured order.
func (r *CategoryRepo) ListByBook(ctx context.Context, bookID uint64) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT c.id, c.name, c.type, COALESCE(c.icon,''), COALESCE(c.remark,''), c.seq, c.pid "+
			"FROM category c JOIN book_category bc ON bc.category_id=c.id WHERE bc.book_id=? ORDER BY c.seq, c.id",
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Remark, &c.Seq, &c.PID); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Update applies the non-nil fields of upd to the category row.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, upd model.CategoryUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if upd.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Type != nil {
		sets = append(sets, "type=?")
		args = append(args, *upd.Type)
	}
	if upd.Icon != nil {
		sets = append(sets, "icon=?")
		args = append(args, nullable(*upd.Icon))
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
		"UPDATE category SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// Delete removes a category and, via cascade, its children.  Fails with
// ErrConflict while tallies still reference the category or one of its
// children.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM category WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
