package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/id"
	"landedcost/internal/domain"
	"landedcost/internal/domain/allocation"
	lcv "landedcost/internal/domain/documents/landed_cost_voucher"
	"landedcost/internal/domain/receipts"
)

type voucherLines struct {
	refs    []receipts.Reference
	charges []lcv.ChargeLine
}

// VoucherRepository is an in-memory landed cost voucher store.
type VoucherRepository struct {
	mu        sync.RWMutex
	docs      map[id.ID]lcv.LandedCostVoucher
	lines     map[id.ID]voucherLines
	allocated map[id.ID][]allocation.AllocatedItem
}

// NewVoucherRepository creates the repository.
func NewVoucherRepository() *VoucherRepository {
	return &VoucherRepository{
		docs:      make(map[id.ID]lcv.LandedCostVoucher),
		lines:     make(map[id.ID]voucherLines),
		allocated: make(map[id.ID][]allocation.AllocatedItem),
	}
}

func (r *VoucherRepository) Create(_ context.Context, doc *lcv.LandedCostVoucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[doc.ID]; exists {
		return apperror.NewValidation("document already exists").
			WithDetail("document_id", doc.ID.String())
	}

	r.docs[doc.ID] = header(doc)
	return nil
}

func (r *VoucherRepository) GetByID(_ context.Context, docID id.ID) (*lcv.LandedCostVoucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("landed cost voucher", docID.String())
	}
	return &doc, nil
}

func (r *VoucherRepository) GetByNumber(_ context.Context, number string) (*lcv.LandedCostVoucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.docs {
		if doc.Number == number {
			out := doc
			return &out, nil
		}
	}
	return nil, apperror.NewNotFound("landed cost voucher", number)
}

func (r *VoucherRepository) Update(_ context.Context, doc *lcv.LandedCostVoucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("landed cost voucher", doc.ID.String())
	}

	r.docs[doc.ID] = header(doc)
	return nil
}

func (r *VoucherRepository) Delete(_ context.Context, docID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("landed cost voucher", docID.String())
	}

	delete(r.docs, docID)
	delete(r.lines, docID)
	delete(r.allocated, docID)
	return nil
}

func (r *VoucherRepository) GetLines(_ context.Context, docID id.ID) ([]receipts.Reference, []lcv.ChargeLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := r.lines[docID]
	refs := append([]receipts.Reference(nil), lines.refs...)
	charges := append([]lcv.ChargeLine(nil), lines.charges...)
	return refs, charges, nil
}

func (r *VoucherRepository) SaveLines(_ context.Context, docID id.ID, refs []receipts.Reference, charges []lcv.ChargeLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[docID] = voucherLines{
		refs:    append([]receipts.Reference(nil), refs...),
		charges: append([]lcv.ChargeLine(nil), charges...),
	}
	return nil
}

func (r *VoucherRepository) GetAllocatedItems(_ context.Context, docID id.ID) ([]allocation.AllocatedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]allocation.AllocatedItem(nil), r.allocated[docID]...), nil
}

func (r *VoucherRepository) SaveAllocatedItems(_ context.Context, docID id.ID, items []allocation.AllocatedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocated[docID] = append([]allocation.AllocatedItem(nil), items...)
	return nil
}

func (r *VoucherRepository) List(_ context.Context, filter lcv.ListFilter) (domain.ListResult[*lcv.LandedCostVoucher], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*lcv.LandedCostVoucher, 0)
	for _, doc := range r.docs {
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && doc.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && doc.Date.After(*filter.DateTo) {
			continue
		}
		if filter.Search != "" && !strings.Contains(doc.Number, filter.Search) {
			continue
		}
		out := doc
		matched = append(matched, &out)
	}

	if filter.OrderBy == "number" {
		sort.Slice(matched, func(i, j int) bool { return matched[i].Number < matched[j].Number })
	} else {
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	total := int64(len(matched))

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]

	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return domain.ListResult[*lcv.LandedCostVoucher]{
		Items:      matched,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// header copies the document without its table parts; lines and allocated
// items live in their own maps.
func header(doc *lcv.LandedCostVoucher) lcv.LandedCostVoucher {
	out := *doc
	out.Receipts = nil
	out.Charges = nil
	out.AllocatedItems = nil
	return out
}

var _ lcv.Repository = (*VoucherRepository)(nil)
