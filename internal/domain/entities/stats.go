package entities

import (
	"time"
)

// HourlyStats is a pre-aggregated per (token, hour-bucket) row. Volumes are
// exact integer text; sender/receiver counters count non-zero addresses
// observed in the bucket.
type HourlyStats struct {
	TokenAddress    string    `db:"token_address"`
	Hour            time.Time `db:"hour"`
	TransferCount   int64     `db:"transfer_count"`
	TransferVolume  string    `db:"transfer_volume"`
	MintCount       int64     `db:"mint_count"`
	MintVolume      string    `db:"mint_volume"`
	BurnCount       int64     `db:"burn_count"`
	BurnVolume      string    `db:"burn_volume"`
	UniqueSenders   int64     `db:"unique_senders"`
	UniqueReceivers int64     `db:"unique_receivers"`
}
