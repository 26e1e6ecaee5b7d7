package entities

// Account is the current balance for an (address, token) pair, materialized
// as the clamped-at-zero sum of signed transfer deltas. Balances are stored
// as exact base-10 integer text, never floats.
type Account struct {
	Address        string `db:"address"`
	TokenAddress   string `db:"token_address"`
	Balance        string `db:"balance"`
	UpdatedAtBlock int64  `db:"updated_at_block"`
}
