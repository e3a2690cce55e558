// Package allocation implements the landed cost distribution engine.
// Distribution is pure: it computes each item row's share of a charge pool
// under a selectable basis and never touches any ledger.
package allocation

import (
	"context"
	"strings"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/receipts"
)

// Basis is the item-row field used as weight when splitting a charge pool.
type Basis string

const (
	BasisAmount   Basis = "amount"
	BasisQuantity Basis = "quantity"
	BasisWeight   Basis = "weight"
)

// ParseBasis parses a basis name case-insensitively.
func ParseBasis(s string) (Basis, error) {
	switch Basis(strings.ToLower(strings.TrimSpace(s))) {
	case BasisAmount:
		return BasisAmount, nil
	case BasisQuantity:
		return BasisQuantity, nil
	case BasisWeight:
		return BasisWeight, nil
	default:
		return "", apperror.NewInvalidDistributionBasis(s)
	}
}

// AllocatedItem is one derived allocation row: an item row's share of the
// voucher's charge pool.
type AllocatedItem struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	SourceKind entity.SourceKind `db:"source_kind" json:"sourceKind"`
	SourceID   id.ID             `db:"source_id" json:"sourceId"`

	ItemCode  string `db:"item_code" json:"itemCode"`
	Warehouse string `db:"warehouse" json:"warehouse"`

	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	BasisValue types.Money    `db:"basis_value" json:"basisValue"`

	// AllocatedCharge is rounded to the ledger's minor-unit precision.
	// Across a voucher the allocated charges sum exactly to the pool.
	AllocatedCharge types.Money `db:"allocated_charge" json:"allocatedCharge"`

	// PerUnitDelta = AllocatedCharge / Quantity.
	PerUnitDelta types.Money `db:"per_unit_delta" json:"perUnitDelta"`
}

// BasisValue reads the chosen basis field from an item row.
func BasisValue(row receipts.ItemRow, basis Basis) types.Money {
	switch basis {
	case BasisQuantity:
		return row.Quantity.Decimal()
	case BasisWeight:
		return row.Weight
	default:
		return row.Amount
	}
}

// Distribute allocates chargePool across itemRows proportionally to the
// chosen basis.
//
// Rounding: each allocation is rounded to the ledger scale; the residual
// (pool minus the rounded sum) is added to the row with the largest basis
// value, first such row on ties, so the pool total is reproduced exactly.
func Distribute(ctx context.Context, chargePool types.Money, itemRows []receipts.ItemRow, basis Basis) ([]AllocatedItem, error) {
	total := types.Zero()
	for _, row := range itemRows {
		total = total.Add(BasisValue(row, basis))
	}
	if total.IsZero() {
		return nil, apperror.NewZeroDistributionBasis(string(basis))
	}

	for i, row := range itemRows {
		if !row.Quantity.IsPositive() {
			return nil, apperror.NewValidation("item quantity must be positive to derive per-unit cost").
				WithDetail("item_code", row.ItemCode).
				WithDetail("row", i+1)
		}
	}

	items := make([]AllocatedItem, 0, len(itemRows))
	allocatedSum := types.Zero()
	largest := 0

	for i, row := range itemRows {
		basisValue := BasisValue(row, basis)
		allocated := types.RoundLedger(basisValue.Mul(chargePool).Div(total))
		allocatedSum = allocatedSum.Add(allocated)

		if basisValue.GreaterThan(BasisValue(itemRows[largest], basis)) {
			largest = i
		}

		items = append(items, AllocatedItem{
			LineID:          id.New(),
			LineNo:          i + 1,
			SourceKind:      row.SourceKind,
			SourceID:        row.SourceID,
			ItemCode:        row.ItemCode,
			Warehouse:       row.Warehouse,
			Quantity:        row.Quantity,
			BasisValue:      basisValue,
			AllocatedCharge: allocated,
		})
	}

	// Assign the rounding residue deterministically.
	residue := chargePool.Sub(allocatedSum)
	if !residue.IsZero() {
		items[largest].AllocatedCharge = items[largest].AllocatedCharge.Add(residue)
	}

	for i := range items {
		items[i].PerUnitDelta = items[i].AllocatedCharge.Div(items[i].Quantity.Decimal())
	}

	return items, nil
}
