package model

// Account is a money-holding entity (cash, bank card, wallet) owned by
// exactly one user.  An account can be attached to several books through
// the book_account join.
type Account struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Remark string `json:"remark,omitempty"`
	UserID uint64 `json:"-"`
}

// AccountUpdate carries the mutable account fields.
type AccountUpdate struct {
	Name   *string `json:"name"`
	Icon   *string `json:"icon"`
	Remark *string `json:"remark"`
}
