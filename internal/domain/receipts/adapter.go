package receipts

import (
	"context"
	"fmt"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/domain/itemmaster"
)

// Adapter resolves either supported source document kind into the same
// ItemRow shape, so downstream components stay source-kind-agnostic.
type Adapter struct {
	store SourceStore
	items itemmaster.Repository
}

// NewAdapter creates a receipt adapter.
func NewAdapter(store SourceStore, items itemmaster.Repository) *Adapter {
	return &Adapter{
		store: store,
		items: items,
	}
}

// Resolve implements Resolver.
func (a *Adapter) Resolve(ctx context.Context, ref Reference) ([]ItemRow, error) {
	liability, err := liabilityKindFor(ref.Kind)
	if err != nil {
		return nil, err
	}

	doc, err := a.store.Load(ctx, ref.Kind, ref.SourceID)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", ref.Kind, ref.SourceID, err)
	}

	rows := make([]ItemRow, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		profile, err := a.items.GetProfile(ctx, line.ItemCode)
		if err != nil {
			return nil, fmt.Errorf("item profile %s: %w", line.ItemCode, err)
		}

		rows = append(rows, ItemRow{
			SourceKind:              ref.Kind,
			SourceID:                ref.SourceID,
			ItemCode:                line.ItemCode,
			Warehouse:               line.Warehouse,
			Quantity:                line.Quantity,
			Amount:                  line.Amount,
			Weight:                  line.Weight,
			PriorValuationCharges:   line.PriorValuationCharges,
			ValuationAccount:        profile.ValuationAccount,
			ValuationExpenseAccount: doc.ValuationExpenseAccount,
			LiabilityKind:           liability,
			LiabilityAccount:        doc.LiabilityAccount,
			Serialized:              profile.Serialized,
			SerialNos:               line.SerialNos,
		})
	}

	return rows, nil
}

// liabilityKindFor maps a source kind to the account kind owed for it.
func liabilityKindFor(kind entity.SourceKind) (LiabilityKind, error) {
	switch kind {
	case entity.SourceReceiptNote:
		return LiabilityProvisional, nil
	case entity.SourceSupplierInvoice:
		return LiabilityPayable, nil
	default:
		return "", apperror.NewUnsupportedSourceKind(string(kind))
	}
}

// Ensure interface compliance at compile time.
var _ Resolver = (*Adapter)(nil)
