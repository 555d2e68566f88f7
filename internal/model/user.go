package model

import "time"

// User states.  A disabled user keeps its rows but cannot log in or be
// served by the profile endpoints.
const (
	UserStateActive   = 0
	UserStateDisabled = 1
)

// User represents a row of the `user` table.  A user is resolvable for
// login through at least one of three identifiers: mobile number, mail
// address or WeChat openid.  Each identifier is unique across users.
// The password column stores either a bcrypt hash (new accounts) or the
// legacy salted-MD5 digest carried over from the original data set.
//
// The json tags shape the wire representation of the profile endpoints;
// the identifiers and the password digest never leave the server except
// through the explicit profile fields listed below.
type User struct {
	ID        uint64    `json:"id"`
	Mobile    string    `json:"mobile,omitempty"`
	Mail      string    `json:"mail,omitempty"`
	WXOpenID  string    `json:"-"`
	Password  string    `json:"-"`
	NickName  string    `json:"nickName"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Motto     string    `json:"motto,omitempty"`
	VIPLevel  int       `json:"vipLevel"`
	State     int       `json:"-"`
	Created   time.Time `json:"created"`
}

// UserConfigure is the optional per-user configuration row.  It records
// which book the user last worked in.
type UserConfigure struct {
	UserID        uint64 `json:"-"`
	CurrentBookID uint64 `json:"currentBookId"`
}

// UserUpdate carries the profile fields a user may change about
// themselves.  Nil pointers leave the stored value untouched.  Updates
// go through this struct only; arbitrary column assignment from request
// maps is not supported.
type UserUpdate struct {
	NickName  *string `json:"nickName"`
	AvatarURL *string `json:"avatarUrl"`
	Motto     *string `json:"motto"`
}
