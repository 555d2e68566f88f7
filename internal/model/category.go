package model

// Category type flags.  The sign of the flag matches the direction money
// moves: expenses are negative, income positive, transfers neutral.
const (
	CategoryExpense = -1
	CategoryNeutral = 0
	CategoryIncome  = 1
)

// Category is a self-referencing hierarchical classification attached to
// a book.  Deleting a parent cascades to its children; deleting a
// category still referenced by tallies is rejected by the schema.
type Category struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	Type   int     `json:"type"`
	Icon   string  `json:"icon,omitempty"`
	Remark string  `json:"remark,omitempty"`
	Seq    int     `json:"seq"`
	PID    *uint64 `json:"pid"`
}

// CategoryUpdate carries the mutable category fields.
type CategoryUpdate struct {
	Name   *string `json:"name"`
	Type   *int    `json:"type"`
	Icon   *string `json:"icon"`
	Remark *string `json:"remark"`
	Seq    *int    `json:"seq"`
}
