// Package stockledger provides the movement ledger revaluation service.
package stockledger

import (
	"context"
	"fmt"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/pkg/logger"
)

// Service re-values movement ledger chains. Transactions are managed by the
// caller (the voucher submission flow).
type Service struct {
	repo Repository
}

// NewService creates a new stock ledger service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Revalue adds delta to the stock value of the chain row created by the
// source receipt and of every later row for the same (item, warehouse).
//
// The shift is a constant applied to the remaining chain: consumption events
// between the receipt and now already booked their cost at the old rate and
// keep it. Quantities are untouched.
func (s *Service) Revalue(ctx context.Context, itemCode, warehouse string, recorderID id.ID, delta types.Money) error {
	source, err := s.repo.GetEntryByRecorder(ctx, itemCode, warehouse, recorderID)
	if err != nil {
		return fmt.Errorf("locate source entry: %w", err)
	}
	if source == nil {
		return apperror.NewNotFound("stock ledger entry", recorderID.String()).
			WithDetail("item_code", itemCode).
			WithDetail("warehouse", warehouse)
	}

	chain, err := s.repo.ListFrom(ctx, itemCode, warehouse, source.Period, source.Sequence)
	if err != nil {
		return fmt.Errorf("list chain: %w", err)
	}

	lineIDs := make([]id.ID, 0, len(chain))
	for _, entry := range chain {
		lineIDs = append(lineIDs, entry.LineID)
	}

	if err := s.repo.ShiftStockValue(ctx, lineIDs, delta); err != nil {
		return fmt.Errorf("shift stock value: %w", err)
	}

	logger.Info(ctx, "revalued stock ledger chain",
		"item_code", itemCode,
		"warehouse", warehouse,
		"entries", len(lineIDs),
		"delta", delta.String(),
	)

	return nil
}

// Reverse undoes a prior revaluation by subtracting the same delta from the
// same set of rows.
func (s *Service) Reverse(ctx context.Context, itemCode, warehouse string, recorderID id.ID, delta types.Money) error {
	return s.Revalue(ctx, itemCode, warehouse, recorderID, delta.Neg())
}
