package model

// Permission bits.  Bits combine additively: rw=6, rwd=7.
const (
	PermRead   = 4
	PermWrite  = 2
	PermDelete = 1
	PermFull   = PermRead | PermWrite | PermDelete
)

// Allows reports whether mask grants every bit in want.
func Allows(mask, want int) bool { return mask&want == want }

// UserBook is the join row between users and books.  The creator of a
// book receives PermFull in the same transaction that inserts the book;
// invited users start with the column default (PermRead).
type UserBook struct {
	UserID     uint64 `json:"userId"`
	BookID     uint64 `json:"bookId"`
	Permission int    `json:"permission"`
}

// Permission is the standalone per-module ACL row (module_name is
// "book", "user", "application", ...).  Grants are managed through the
// /v1/permission endpoints but nothing enforces them yet; the table is
// the intended generalization of UserBook.Permission to resources other
// than books.
type Permission struct {
	ID         uint64 `json:"id"`
	UserID     uint64 `json:"userId"`
	ModuleName string `json:"moduleName"`
	Authority  int    `json:"authority"`
	Remark     string `json:"remark,omitempty"`
}
