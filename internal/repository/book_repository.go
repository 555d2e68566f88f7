package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// BookRepo provides access to the 'book' table and its joins.  Creating
// a book and granting the creator full permission is a single
// transaction: a book without an owning user_book row must never be
// observable.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

const bookColumns = "id, name, COALESCE(icon,''), COALESCE(remark,''), state, created"

func scanBook(row *sql.Row) (model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Name, &b.Icon, &b.Remark, &b.State, &b.Created)
	return b, err
}

// CreateWithOwner inserts the book and the creator's user_book row with
// full permission, committing both or neither.
func (r *BookRepo) CreateWithOwner(ctx context.Context, b *model.Book, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.createWithOwnerTx(ctx, tx, b, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// createWithOwnerTx performs the two inserts inside tx.  Split out so a
// test can drive it against a transaction it aborts afterwards.
func (r *BookRepo) createWithOwnerTx(ctx context.Context, tx *sql.Tx, b *model.Book, userID uint64) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO book (name, icon, remark) VALUES (?,?,?)",
		b.Name, nullable(b.Icon), nullable(b.Remark))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	_, err = tx.ExecContext(ctx,
		"INSERT INTO user_book (user_id, book_id, permission) VALUES (?,?,?)",
		userID, b.ID, model.PermFull)
	return err
}

// GetByID fetches a book by id.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	return scanBook(r.DB.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM book WHERE id=? LIMIT 1", id))
}

// ListByUser returns the books shared with the given user.
func (r *BookRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT b.id, b.name, COALESCE(b.icon,''), COALESCE(b.remark,''), b.state, b.created "+
			"FROM book b JOIN user_book ub ON ub.book_id=b.id WHERE ub.user_id=? ORDER BY b.id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var books []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Name, &b.Icon, &b.Remark, &b.State, &b.Created); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// Update applies the non-nil fields of upd to the book row.
func (r *BookRepo) Update(ctx context.Context, id uint64, upd model.BookUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Icon != nil {
		sets = append(sets, "icon=?")
		args = append(args, nullable(*upd.Icon))
	}
	if upd.Remark != nil {
		sets = append(sets, "remark=?")
		args = append(args, nullable(*upd.Remark))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE book SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// Delete hard-deletes a book.  Categories, tags, tallies, configuration
// and join rows go with it via the schema's cascade rules.
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM book WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetPermission returns the permission bitmask the user holds on the
// book.  sql.ErrNoRows means the book is not shared with the user at
// all.
func (r *BookRepo) GetPermission(ctx context.Context, userID, bookID uint64) (int, error) {
	var mask int
	err := r.DB.QueryRowContext(ctx,
		"SELECT permission FROM user_book WHERE user_id=? AND book_id=? LIMIT 1",
		userID, bookID).Scan(&mask)
	return mask, err
}

// Share attaches a user to a book with the given permission bitmask,
// overwriting an existing grant.
func (r *BookRepo) Share(ctx context.Context, userID, bookID uint64, permission int) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_book (user_id, book_id, permission) VALUES (?,?,?) ON DUPLICATE KEY UPDATE permission=VALUES(permission)",
		userID, bookID, permission)
	return err
}

// AttachAccount links an account to a book.  The link is idempotent.
func (r *BookRepo) AttachAccount(ctx context.Context, bookID, accountID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO book_account (book_id, account_id) VALUES (?,?)",
		bookID, accountID)
	return err
}

// GetConfigure loads the book's budget configuration.
func (r *BookRepo) GetConfigure(ctx context.Context, bookID uint64) (model.BookConfigure, error) {
	var c model.BookConfigure
	err := r.DB.QueryRowContext(ctx,
		"SELECT book_id, budget, period FROM book_configure WHERE book_id=? LIMIT 1",
		bookID).Scan(&c.BookID, &c.Budget, &c.Period)
	return c, err
}

// SetConfigure upserts the book's budget configuration.
func (r *BookRepo) SetConfigure(ctx context.Context, c model.BookConfigure) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO book_configure (book_id, budget, period) VALUES (?,?,?) ON DUPLICATE KEY UPDATE budget=VALUES(budget), period=VALUES(period)",
		c.BookID, c.Budget, c.Period)
	return err
}
