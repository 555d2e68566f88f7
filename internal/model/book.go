package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book states mirror user states: a book is soft-disabled via State
// before it is ever hard-deleted.
const (
	BookStateActive   = 0
	BookStateDisabled = 1
)

// Book is a ledger shared among users.  Categories, tags and tallies
// belong to the book and are removed with it; accounts are attachable to
// several books and survive book deletion.
type Book struct {
	ID      uint64    `json:"id"`
	Name    string    `json:"name"`
	Icon    string    `json:"icon,omitempty"`
	Remark  string    `json:"remark,omitempty"`
	State   int       `json:"-"`
	Created time.Time `json:"created"`
}

// BookConfigure is the optional per-book configuration row holding the
// budget amount and its period ("month" by default).
type BookConfigure struct {
	BookID uint64          `json:"-"`
	Budget decimal.Decimal `json:"budget"`
	Period string          `json:"period"`
}

// BookUpdate carries the mutable book fields.
type BookUpdate struct {
	Name   *string `json:"name"`
	Icon   *string `json:"icon"`
	Remark *string `json:"remark"`
}
