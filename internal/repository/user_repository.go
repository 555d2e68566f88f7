package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// UserRepo provides access to the 'user' and 'user_configure' tables.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, COALESCE(mobile,''), COALESCE(mail,''), COALESCE(wx_openid,''), COALESCE(password,''), nick_name, COALESCE(avatar_url,''), COALESCE(motto,''), vip_level, state, created"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Mobile, &u.Mail, &u.WXOpenID, &u.Password,
		&u.NickName, &u.AvatarURL, &u.Motto, &u.VIPLevel, &u.State, &u.Created)
	return u, err
}

// Create inserts a user and returns its ID.  Empty identifiers are
// stored as NULL so the unique indexes only apply to present values.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO user (mobile, mail, wx_openid, password, nick_name, avatar_url, motto, vip_level) VALUES (?,?,?,?,?,?,?,?)",
		nullable(strings.TrimSpace(u.Mobile)), nullable(strings.ToLower(strings.TrimSpace(u.Mail))),
		nullable(u.WXOpenID), nullable(u.Password), u.NickName, nullable(u.AvatarURL), nullable(u.Motto), u.VIPLevel)
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
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE id=? LIMIT 1", id))
}

// GetByMobile fetches a user by exact mobile number.
func (r *UserRepo) GetByMobile(ctx context.Context, mobile string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE mobile=? LIMIT 1", strings.TrimSpace(mobile)))
}

// GetByMail fetches a user by normalized mail address.
func (r *UserRepo) GetByMail(ctx context.Context, mail string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE mail=? LIMIT 1", strings.ToLower(strings.TrimSpace(mail))))
}

// GetByOpenID fetches a user by WeChat openid.
func (r *UserRepo) GetByOpenID(ctx context.Context, openid string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE wx_openid=? LIMIT 1", openid))
}

// UpdateProfile applies the non-nil fields of upd to the user row.
// Returns sql.ErrNoRows when the user does not exist.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, upd model.UserUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.NickName != nil {
		sets = append(sets, "nick_name=?")
		args = append(args, *upd.NickName)
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar_url=?")
		args = append(args, nullable(*upd.AvatarURL))
	}
	if upd.Motto != nil {
		sets = append(sets, "motto=?")
		args = append(args, nullable(*upd.Motto))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "no such user" from "no change": a same-value
		// update also reports zero rows, so check existence.
		var exists uint64
		if err := r.DB.QueryRowContext(ctx, "SELECT id FROM user WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
			return err
		}
	}
	return nil
}

// SetPassword stores a new password digest for the user.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, digest string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE user SET password=? WHERE id=?", digest, id)
	return err
}

// SetState soft-enables or soft-disables a user.
func (r *UserRepo) SetState(ctx context.Context, id uint64, state int) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE user SET state=? WHERE id=?", state, id)
	return err
}

// Delete hard-deletes a user.  Accounts, the configuration row and
// user_book joins are removed by the schema's cascade rules.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM user WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetConfigure loads the user's configuration row.
func (r *UserRepo) GetConfigure(ctx context.Context, userID uint64) (model.UserConfigure, error) {
	var c model.UserConfigure
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, current_book_id FROM user_configure WHERE user_id=? LIMIT 1",
		userID).Scan(&c.UserID, &c.CurrentBookID)
	return c, err
}

// SetConfigure upserts the user's configuration row.
func (r *UserRepo) SetConfigure(ctx context.Context, c model.UserConfigure) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_configure (user_id, current_book_id) VALUES (?,?) ON DUPLICATE KEY UPDATE current_book_id=VALUES(current_book_id)",
		c.UserID, c.CurrentBookID)
	return err
}
