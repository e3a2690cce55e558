// Package finance provides the double-entry financial posting register.
package finance

import (
	"context"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
)

// Repository defines operations on voucher-scoped financial postings.
type Repository interface {
	// AppendPostings batch inserts posting rows (used during submission
	// and cancellation; rows are never updated or deleted).
	AppendPostings(ctx context.Context, postings []entity.GLPosting) error

	// ListByVoucher retrieves all posting rows for a voucher.
	ListByVoucher(ctx context.Context, voucherID id.ID) ([]entity.GLPosting, error)
}
