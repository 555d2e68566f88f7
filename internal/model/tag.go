package model

// Tag is a self-referencing hierarchical label attached to a book and,
// through the tally_tag join, to individual tallies.  Deleting a parent
// cascades to its children.
type Tag struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	Remark string  `json:"remark,omitempty"`
	Seq    int     `json:"seq"`
	PID    *uint64 `json:"pid"`
}

// TagUpdate carries the mutable tag fields.
type TagUpdate struct {
	Name   *string `json:"name"`
	Remark *string `json:"remark"`
	Seq    *int    `json:"seq"`
}
