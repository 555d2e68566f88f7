package repository

import (
	"context"
	"database/sql"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// PermissionRepo provides access to the standalone 'permission' table,
// the per-module ACL that generalizes the user_book bitmask to resources
// other than books.  The /v1/permission endpoints record and inspect
// grants; no guard enforces them yet.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

// Grant records an authority bitmask for a user on a module.
func (r *PermissionRepo) Grant(ctx context.Context, p *model.Permission) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO permission (user_id, module_name, authority, remark) VALUES (?,?,?,?)",
		p.UserID, p.ModuleName, p.Authority, nullable(p.Remark))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	p.ID = uint64(id)
	return p.ID, nil
}

// Authority returns the bitmask a user holds on a module, or
// sql.ErrNoRows when nothing was granted.
func (r *PermissionRepo) Authority(ctx context.Context, userID uint64, module string) (int, error) {
	var mask int
	err := r.DB.QueryRowContext(ctx,
		"SELECT authority FROM permission WHERE user_id=? AND module_name=? LIMIT 1",
		userID, module).Scan(&mask)
	return mask, err
}

// Revoke deletes a grant by id.
func (r *PermissionRepo) Revoke(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM permission WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
