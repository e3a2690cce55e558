package memory

import (
	"context"
	"sync"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/domain/registers/finance"
)

// PostingRepository is an in-memory financial posting register.
type PostingRepository struct {
	mu        sync.RWMutex
	byVoucher map[id.ID][]entity.GLPosting
}

// NewPostingRepository creates the repository.
func NewPostingRepository() *PostingRepository {
	return &PostingRepository{byVoucher: make(map[id.ID][]entity.GLPosting)}
}

func (r *PostingRepository) AppendPostings(_ context.Context, postings []entity.GLPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range postings {
		r.byVoucher[p.VoucherID] = append(r.byVoucher[p.VoucherID], p)
	}
	return nil
}

func (r *PostingRepository) ListByVoucher(_ context.Context, voucherID id.ID) ([]entity.GLPosting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.GLPosting(nil), r.byVoucher[voucherID]...), nil
}

var _ finance.Repository = (*PostingRepository)(nil)
