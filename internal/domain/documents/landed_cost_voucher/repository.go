// Package landed_cost_voucher provides the LandedCostVoucher repository.
package landed_cost_voucher

import (
	"context"
	"time"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/domain"
	"landedcost/internal/domain/allocation"
	"landedcost/internal/domain/receipts"
)

// Repository defines operations for landed cost voucher documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *LandedCostVoucher) error
	GetByID(ctx context.Context, docID id.ID) (*LandedCostVoucher, error)
	GetByNumber(ctx context.Context, number string) (*LandedCostVoucher, error)
	Update(ctx context.Context, doc *LandedCostVoucher) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]receipts.Reference, []ChargeLine, error)
	SaveLines(ctx context.Context, docID id.ID, refs []receipts.Reference, charges []ChargeLine) error

	// Allocated items, written on submission
	GetAllocatedItems(ctx context.Context, docID id.ID) ([]allocation.AllocatedItem, error)
	SaveAllocatedItems(ctx context.Context, docID id.ID, items []allocation.AllocatedItem) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*LandedCostVoucher], error)
}

// ListFilter for filtering landed cost vouchers.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	Status   *entity.DocStatus
	Supplier *string
	DateFrom *time.Time
	DateTo   *time.Time
}
