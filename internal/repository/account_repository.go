package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// AccountRepo provides access to the 'account' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id, name, COALESCE(icon,''), COALESCE(remark,''), user_id"

// Create inserts an account owned by a user and returns its ID.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO account (name, icon, remark, user_id) VALUES (?,?,?,?)",
		a.Name, nullable(a.Icon), nullable(a.Remark), a.UserID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = uint64(id)
	return a.ID, nil
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM account WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Name, &a.Icon, &a.Remark, &a.UserID)
	return a, err
}

// ListByUser returns the accounts owned by a user.
func (r *AccountRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM account WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Icon, &a.Remark, &a.UserID); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update applies the non-nil fields of upd to the account row.
func (r *AccountRepo) Update(ctx context.Context, id uint64, upd model.AccountUpdate) error {
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
		"UPDATE account SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// Delete removes an account.  Fails with ErrConflict while tallies still
// reference it; book_account joins are cleared by the cascade rule.
func (r *AccountRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM account WHERE id=?", id)
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
