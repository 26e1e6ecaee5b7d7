package entities

// IndexedBlock is one processed block with its hash and parent hash. Rows
// form a logical hash-linked chain used only to detect divergence from the
// live chain; rows beyond a detected fork point are deleted.
type IndexedBlock struct {
	BlockNumber int64  `db:"block_number"`
	BlockHash   string `db:"block_hash"`
	ParentHash  string `db:"parent_hash"`
	Timestamp   int64  `db:"timestamp"`
}
