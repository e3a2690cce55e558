package landed_cost_voucher

import "landedcost/internal/core/numerator"

const (
	// NumberPrefix is the document number prefix (e.g. LCV-2026-00042).
	NumberPrefix = "LCV"

	// NumeratorStrategy defines the numbering strategy for this document
	// type. Vouchers are primary accounting documents, so numbering must
	// be gapless and strictly ordered.
	NumeratorStrategy = numerator.StrategyStrict
)

// Config carries ledger-wide posting policy.
type Config struct {
	// PerpetualInventory enables financial posting generation on
	// submission. When off, stock and serial registers are still updated
	// but no account postings are written.
	PerpetualInventory bool
}

// DefaultConfig enables perpetual inventory posting.
func DefaultConfig() Config {
	return Config{
		PerpetualInventory: true,
	}
}
