package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// ApplicationRepo provides access to the 'application' table.  The token
// layer resolves applications by their public app_id string; management
// endpoints address them by numeric primary key.
type ApplicationRepo struct{ DB *sql.DB }

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{DB: db} }

const appColumns = "id, app_id, app_name, secret_key, expirydate"

func scanApp(row *sql.Row) (model.Application, error) {
	var a model.Application
	err := row.Scan(&a.ID, &a.AppID, &a.AppName, &a.SecretKey, &a.ExpiryDate)
	return a, err
}

// Create inserts an application and returns its ID.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.Application) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO application (app_id, app_name, secret_key, expirydate) VALUES (?,?,?,?)",
		strings.TrimSpace(a.AppID), a.AppName, a.SecretKey, a.ExpiryDate.UTC())
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = uint64(id)
	return a.ID, nil
}

// GetByID fetches an application by primary key.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (model.Application, error) {
	return scanApp(r.DB.QueryRowContext(ctx,
		"SELECT "+appColumns+" FROM application WHERE id=? LIMIT 1", id))
}

// GetByAppID fetches an application by its public app_id string.
func (r *ApplicationRepo) GetByAppID(ctx context.Context, appID string) (model.Application, error) {
	return scanApp(r.DB.QueryRowContext(ctx,
		"SELECT "+appColumns+" FROM application WHERE app_id=? LIMIT 1", strings.TrimSpace(appID)))
}

// List returns all registered applications.
func (r *ApplicationRepo) List(ctx context.Context) ([]model.Application, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+appColumns+" FROM application ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var apps []model.Application
	for rows.Next() {
		var a model.Application
		if err := rows.Scan(&a.ID, &a.AppID, &a.AppName, &a.SecretKey, &a.ExpiryDate); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// Update applies the non-nil fields of upd to the application row.
func (r *ApplicationRepo) Update(ctx context.Context, id uint64, upd model.ApplicationUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.AppName != nil {
		sets = append(sets, "app_name=?")
		args = append(args, *upd.AppName)
	}
	if upd.SecretKey != nil {
		sets = append(sets, "secret_key=?")
		args = append(args, *upd.SecretKey)
	}
	if upd.ExpiryDate != nil {
		sets = append(sets, "expirydate=?")
		args = append(args, upd.ExpiryDate.UTC())
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE application SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// Delete removes an application.  Outstanding tokens signed with its
// secret become unverifiable immediately.
func (r *ApplicationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM application WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
