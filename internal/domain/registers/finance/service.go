package finance

import (
	"context"
	"fmt"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/pkg/logger"
)

// Service records and reverses voucher posting sets. Transactions are managed
// by the caller.
type Service struct {
	repo Repository
}

// NewService creates a new financial posting service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordPostings appends a posting set to the register.
func (s *Service) RecordPostings(ctx context.Context, postings []entity.GLPosting) error {
	if len(postings) == 0 {
		return nil
	}

	if err := s.repo.AppendPostings(ctx, postings); err != nil {
		return fmt.Errorf("append postings: %w", err)
	}

	debit, credit := Totals(postings)
	logger.Info(ctx, "recorded financial postings",
		"voucher_id", postings[0].VoucherID.String(),
		"rows", len(postings),
		"debit", debit.String(),
		"credit", credit.String(),
	)

	return nil
}

// ReverseByVoucher appends a mirrored posting row for every original posting
// of the voucher. Original rows stay in place; the reversal is a new set
// flagged as such, so the audit trail survives cancellation.
func (s *Service) ReverseByVoucher(ctx context.Context, voucherID id.ID) error {
	existing, err := s.repo.ListByVoucher(ctx, voucherID)
	if err != nil {
		return fmt.Errorf("list postings: %w", err)
	}

	reversals := make([]entity.GLPosting, 0, len(existing))
	for _, p := range existing {
		if p.IsReversal {
			continue
		}
		r := entity.NewGLPosting(voucherID, p.Account, p.Credit, p.Debit, p.PostingDate)
		r.IsReversal = true
		reversals = append(reversals, r)
	}

	if len(reversals) == 0 {
		return nil
	}

	if err := s.repo.AppendPostings(ctx, reversals); err != nil {
		return fmt.Errorf("append reversal postings: %w", err)
	}

	logger.Info(ctx, "reversed financial postings",
		"voucher_id", voucherID.String(),
		"rows", len(reversals),
	)

	return nil
}

// ListByVoucher exposes the voucher's posting rows, reversals included.
func (s *Service) ListByVoucher(ctx context.Context, voucherID id.ID) ([]entity.GLPosting, error) {
	return s.repo.ListByVoucher(ctx, voucherID)
}
