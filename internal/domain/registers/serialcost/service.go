// Package serialcost provides the serialized unit cost update service.
package serialcost

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/receipts"
	"landedcost/pkg/logger"
)

// Service applies allocated charges to serialized unit cost records.
// Transactions are managed by the caller.
type Service struct {
	repo Repository
}

// NewService creates a new serial cost service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// ValidateRow checks that a serialized item row's quantity matches its serial
// unit count. Called before any ledger mutation.
func ValidateRow(row receipts.ItemRow) error {
	if !row.Serialized {
		return nil
	}
	if row.Quantity != types.NewQuantityFromFloat64(float64(len(row.SerialNos))) {
		return apperror.NewSerialCountMismatch(row.ItemCode, row.Quantity.Float64(), len(row.SerialNos))
	}
	return nil
}

// ApplyCharge divides the row's allocated charge evenly across its serial
// units and increments each unit's purchase cost. The rounding residue goes
// to the first serial unit of the row.
func (s *Service) ApplyCharge(ctx context.Context, row receipts.ItemRow, allocatedCharge types.Money) error {
	return s.apply(ctx, row, allocatedCharge, false)
}

// ReverseCharge subtracts the exact per-unit amounts a prior ApplyCharge
// added. The split is deterministic, so recomputing it yields the same
// increments to negate.
func (s *Service) ReverseCharge(ctx context.Context, row receipts.ItemRow, allocatedCharge types.Money) error {
	return s.apply(ctx, row, allocatedCharge, true)
}

func (s *Service) apply(ctx context.Context, row receipts.ItemRow, allocatedCharge types.Money, reverse bool) error {
	if err := ValidateRow(row); err != nil {
		return err
	}

	shares := SplitPerUnit(allocatedCharge, len(row.SerialNos))
	for i, serialNo := range row.SerialNos {
		delta := shares[i]
		if reverse {
			delta = delta.Neg()
		}
		if err := s.repo.AddToPurchaseCost(ctx, serialNo, delta); err != nil {
			return fmt.Errorf("update serial %s: %w", serialNo, err)
		}
	}

	logger.Info(ctx, "updated serial cost records",
		"item_code", row.ItemCode,
		"units", len(row.SerialNos),
		"charge", allocatedCharge.String(),
		"reverse", reverse,
	)

	return nil
}

// SplitPerUnit divides amount across n units at ledger precision, assigning
// the residue to the first unit.
func SplitPerUnit(amount types.Money, n int) []types.Money {
	shares := make([]types.Money, n)
	if n == 0 {
		return shares
	}

	perUnit := types.RoundLedger(amount.Div(decimal.NewFromInt(int64(n))))
	total := types.Zero()
	for i := range shares {
		shares[i] = perUnit
		total = total.Add(perUnit)
	}
	shares[0] = shares[0].Add(amount.Sub(total))

	return shares
}
