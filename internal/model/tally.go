package model

import "github.com/shopspring/decimal"

// Tally is a single financial transaction record.  Amounts are
// fixed-point decimals (DECIMAL(13,4) in storage); RecordTimestamp is
// epoch seconds and indexed for range queries.  A tally always carries a
// category; the account reference is optional.
type Tally struct {
	ID              uint64          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	RecordTimestamp int64           `json:"recordTimestamp"`
	Remark          string          `json:"remark,omitempty"`
	BookID          uint64          `json:"bookId"`
	CategoryID      uint64          `json:"categoryId"`
	AccountID       *uint64         `json:"accountId"`
	TagIDs          []uint64        `json:"tagIds,omitempty"`
}

// TallyUpdate carries the mutable tally fields.  Replacing TagIDs
// rewrites the tally_tag join for the record.
type TallyUpdate struct {
	Amount          *decimal.Decimal `json:"amount"`
	RecordTimestamp *int64           `json:"recordTimestamp"`
	Remark          *string          `json:"remark"`
	CategoryID      *uint64          `json:"categoryId"`
	AccountID       *uint64          `json:"accountId"`
	TagIDs          *[]uint64        `json:"tagIds"`
}
