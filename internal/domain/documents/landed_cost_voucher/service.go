// Package landed_cost_voucher provides the LandedCostVoucher document service.
package landed_cost_voucher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/numerator"
	"landedcost/internal/core/tx"
	"landedcost/internal/domain"
	"landedcost/internal/domain/allocation"
	"landedcost/internal/domain/receipts"
	"landedcost/internal/domain/registers/finance"
	"landedcost/internal/domain/registers/serialcost"
	"landedcost/internal/domain/registers/stockledger"
	"landedcost/pkg/logger"
)

// Service provides business operations for landed cost vouchers.
// Submission and cancellation mutate all affected registers atomically.
type Service struct {
	repo      Repository
	resolver  receipts.Resolver
	stock     *stockledger.Service
	serials   *serialcost.Service
	finance   *finance.Service
	locker    stockledger.ChainLocker
	numerator numerator.Generator
	txManager tx.Manager
	cfg       Config
}

// NewService creates a new landed cost voucher service.
func NewService(
	repo Repository,
	resolver receipts.Resolver,
	stock *stockledger.Service,
	serials *serialcost.Service,
	financeSvc *finance.Service,
	locker stockledger.ChainLocker,
	numGen numerator.Generator,
	txManager tx.Manager,
	cfg Config,
) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		stock:     stock,
		serials:   serials,
		finance:   financeSvc,
		locker:    locker,
		numerator: numGen,
		txManager: txManager,
		cfg:       cfg,
	}
}

// SubmitResult is what a successful submission produced.
type SubmitResult struct {
	AllocatedItems []allocation.AllocatedItem `json:"allocatedItems"`
	Postings       []entity.GLPosting         `json:"postings,omitempty"`
}

// Create creates a new draft voucher.
func (s *Service) Create(ctx context.Context, doc *LandedCostVoucher) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Receipts, doc.Charges); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "landed cost voucher created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// GetByID retrieves a voucher with lines and allocated items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*LandedCostVoucher, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	refs, charges, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Receipts = refs
	doc.Charges = charges

	allocated, err := s.repo.GetAllocatedItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get allocated items: %w", err)
	}
	doc.AllocatedItems = allocated

	return doc, nil
}

// Update updates a draft voucher. Submitted and cancelled vouchers are
// immutable.
func (s *Service) Update(ctx context.Context, doc *LandedCostVoucher) error {
	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	doc.Touch()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Receipts, doc.Charges); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})
}

// Delete removes a draft voucher. Submitted documents are cancelled, never
// deleted.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	return s.repo.Delete(ctx, docID)
}

// List retrieves vouchers with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*LandedCostVoucher], error) {
	return s.repo.List(ctx, filter)
}

// Preview resolves the voucher's receipts and computes the allocation without
// touching any register. Drafts use it to show the operator what submission
// would apply.
func (s *Service) Preview(ctx context.Context, docID id.ID) ([]allocation.AllocatedItem, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	_, allocated, err := s.resolveAndDistribute(ctx, doc)
	return allocated, err
}

// Submit validates the voucher, distributes its charge pool and applies the
// result to the stock ledger, serial cost records and financial postings in
// one transaction. All validation runs before the first register write, so a
// failing voucher leaves every ledger untouched.
func (s *Service) Submit(ctx context.Context, docID id.ID) (*SubmitResult, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if doc.Status != entity.StatusDraft {
		return nil, apperror.NewInvalidStateTransition(string(doc.Status), string(entity.StatusSubmitted)).
			WithDetail("document_id", doc.ID.String())
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	itemRows, allocated, err := s.resolveAndDistribute(ctx, doc)
	if err != nil {
		return nil, err
	}

	var postings []entity.GLPosting
	if s.cfg.PerpetualInventory {
		postings, err = finance.Generate(doc.ID, doc.Date, itemRows, allocated, chargeCredits(doc.Charges))
		if err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		release, err := s.locker.LockChains(ctx, chainKeys(allocated))
		if err != nil {
			return err
		}
		defer release()

		for i, alloc := range allocated {
			if err := s.stock.Revalue(ctx, alloc.ItemCode, alloc.Warehouse, alloc.SourceID, alloc.AllocatedCharge); err != nil {
				return err
			}

			if itemRows[i].Serialized {
				if err := s.serials.ApplyCharge(ctx, itemRows[i], alloc.AllocatedCharge); err != nil {
					return err
				}
			}
		}

		if len(postings) > 0 {
			if err := s.finance.RecordPostings(ctx, postings); err != nil {
				return err
			}
		}

		if err := s.repo.SaveAllocatedItems(ctx, doc.ID, allocated); err != nil {
			return fmt.Errorf("save allocated items: %w", err)
		}

		if err := doc.MarkSubmitted(); err != nil {
			return err
		}
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	doc.AllocatedItems = allocated

	logger.Info(ctx, "landed cost voucher submitted",
		"id", doc.ID,
		"number", doc.Number,
		"items", len(allocated),
		"pool", doc.TotalChargePool().String(),
		"postings", len(postings))

	return &SubmitResult{
		AllocatedItems: allocated,
		Postings:       postings,
	}, nil
}

// Cancel reverses a submitted voucher: the stock value shifts and serial cost
// increments are negated and mirrored reversal postings are appended. The
// voucher and its original postings remain as the audit trail.
func (s *Service) Cancel(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Status != entity.StatusSubmitted {
		return apperror.NewInvalidStateTransition(string(doc.Status), string(entity.StatusCancelled)).
			WithDetail("document_id", doc.ID.String())
	}

	// Re-resolve rows for the serial number lists; the allocation itself is
	// replayed from what submission stored, not recomputed.
	itemRows, err := s.resolveRows(ctx, doc)
	if err != nil {
		return err
	}

	allocated := doc.AllocatedItems
	if len(allocated) != len(itemRows) {
		return apperror.NewInternal(nil).
			WithDetail("reason", "stored allocations no longer match resolved receipt rows").
			WithDetail("stored", len(allocated)).
			WithDetail("resolved", len(itemRows))
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		release, err := s.locker.LockChains(ctx, chainKeys(allocated))
		if err != nil {
			return err
		}
		defer release()

		for i, alloc := range allocated {
			if err := s.stock.Reverse(ctx, alloc.ItemCode, alloc.Warehouse, alloc.SourceID, alloc.AllocatedCharge); err != nil {
				return err
			}

			if itemRows[i].Serialized {
				if err := s.serials.ReverseCharge(ctx, itemRows[i], alloc.AllocatedCharge); err != nil {
					return err
				}
			}
		}

		if s.cfg.PerpetualInventory {
			if err := s.finance.ReverseByVoucher(ctx, doc.ID); err != nil {
				return err
			}
		}

		if err := doc.MarkCancelled(); err != nil {
			return err
		}
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "landed cost voucher cancelled",
		"id", doc.ID,
		"number", doc.Number,
		"items", len(allocated))

	return nil
}

// resolveRows resolves every receipt reference into item rows, preserving
// reference order then source line order.
func (s *Service) resolveRows(ctx context.Context, doc *LandedCostVoucher) ([]receipts.ItemRow, error) {
	itemRows := make([]receipts.ItemRow, 0)
	for _, ref := range doc.Receipts {
		rows, err := s.resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		itemRows = append(itemRows, rows...)
	}
	return itemRows, nil
}

// resolveAndDistribute runs the pure pre-mutation pipeline: resolve, check
// serial counts, parse the basis, distribute.
func (s *Service) resolveAndDistribute(ctx context.Context, doc *LandedCostVoucher) ([]receipts.ItemRow, []allocation.AllocatedItem, error) {
	itemRows, err := s.resolveRows(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	for _, row := range itemRows {
		if err := serialcost.ValidateRow(row); err != nil {
			return nil, nil, err
		}
	}

	basis, err := allocation.ParseBasis(doc.Basis)
	if err != nil {
		return nil, nil, err
	}

	allocated, err := allocation.Distribute(ctx, doc.TotalChargePool(), itemRows, basis)
	if err != nil {
		return nil, nil, err
	}

	return itemRows, allocated, nil
}

// chainKeys collects the distinct (item, warehouse) chains touched by the
// allocation, sorted so every caller locks in the same order.
func chainKeys(allocated []allocation.AllocatedItem) []stockledger.ChainKey {
	seen := make(map[stockledger.ChainKey]struct{}, len(allocated))
	keys := make([]stockledger.ChainKey, 0, len(allocated))
	for _, alloc := range allocated {
		key := stockledger.ChainKey{ItemCode: alloc.ItemCode, Warehouse: alloc.Warehouse}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ItemCode != keys[j].ItemCode {
			return keys[i].ItemCode < keys[j].ItemCode
		}
		return keys[i].Warehouse < keys[j].Warehouse
	})

	return keys
}

func chargeCredits(charges []ChargeLine) []finance.ChargeCredit {
	credits := make([]finance.ChargeCredit, 0, len(charges))
	for _, c := range charges {
		credits = append(credits, finance.ChargeCredit{
			Account: c.Account,
			Amount:  c.Amount,
		})
	}
	return credits
}
