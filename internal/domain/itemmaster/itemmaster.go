// Package itemmaster provides the read-only contract to the external item master.
// The engine only needs an item's asset classification and the accounts that
// follow from it; maintaining the master data itself is out of scope.
package itemmaster

import (
	"context"
)

// AssetClass is the accounting classification of an item.
// It selects which valuation account receives the landed cost debit.
type AssetClass string

const (
	// ClassStock items are valued on a stock-in-hand account.
	ClassStock AssetClass = "stock"
	// ClassFixedAsset items are valued on a fixed-asset account.
	ClassFixedAsset AssetClass = "fixed_asset"
)

// ItemProfile carries the accounting attributes of one item.
type ItemProfile struct {
	ItemCode         string     `db:"item_code" json:"itemCode"`
	Class            AssetClass `db:"class" json:"class"`
	ValuationAccount string     `db:"valuation_account" json:"valuationAccount"`

	// Serialized items track per-unit cost records.
	Serialized bool `db:"serialized" json:"serialized"`
}

// Repository looks up item profiles by code.
type Repository interface {
	GetProfile(ctx context.Context, itemCode string) (ItemProfile, error)
}
