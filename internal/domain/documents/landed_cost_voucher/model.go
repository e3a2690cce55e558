// Package landed_cost_voucher provides the LandedCostVoucher document.
package landed_cost_voucher

import (
	"context"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/allocation"
	"landedcost/internal/domain/receipts"
)

// LandedCostVoucher distributes additional acquisition charges (freight,
// customs, insurance) across the item rows of previously posted purchase
// receipts, raising their stock valuation after the fact.
type LandedCostVoucher struct {
	entity.Document

	// Basis names the distribution basis: amount, quantity or weight.
	// Parsed case-insensitively at submission.
	Basis string `db:"basis" json:"basis"`

	// Total of all charge lines (calculated).
	TotalCharges types.Money `db:"total_charges" json:"totalCharges"`

	// Table part: referenced purchase receipts.
	Receipts []receipts.Reference `db:"-" json:"receipts"`

	// Table part: charge lines to distribute.
	Charges []ChargeLine `db:"-" json:"charges"`

	// Derived on submission; empty on drafts. Kept after cancellation as
	// the audit record of what was applied.
	AllocatedItems []allocation.AllocatedItem `db:"-" json:"allocatedItems,omitempty"`
}

// ChargeLine is one charge to be distributed, credited against its expense
// account when postings are generated.
type ChargeLine struct {
	LineID      id.ID       `db:"line_id" json:"lineId"`
	LineNo      int         `db:"line_no" json:"lineNo"`
	Description string      `db:"description" json:"description"`
	Account     string      `db:"account" json:"account"`
	Amount      types.Money `db:"amount" json:"amount"`
}

// NewLandedCostVoucher creates a new draft voucher.
func NewLandedCostVoucher(company, basis string) *LandedCostVoucher {
	return &LandedCostVoucher{
		Document:     entity.NewDocument(company),
		Basis:        basis,
		TotalCharges: types.Zero(),
		Receipts:     make([]receipts.Reference, 0),
		Charges:      make([]ChargeLine, 0),
	}
}

// AddReceipt appends a receipt reference.
func (v *LandedCostVoucher) AddReceipt(ref receipts.Reference) {
	if id.IsNil(ref.LineID) {
		ref.LineID = id.New()
	}
	v.Receipts = append(v.Receipts, ref)
}

// AddCharge appends a charge line and recalculates the total.
func (v *LandedCostVoucher) AddCharge(description, account string, amount types.Money) {
	v.Charges = append(v.Charges, ChargeLine{
		LineID:      id.New(),
		LineNo:      len(v.Charges) + 1,
		Description: description,
		Account:     account,
		Amount:      amount,
	})
	v.recalculateTotals()
}

// recalculateTotals updates the charge total from lines.
func (v *LandedCostVoucher) recalculateTotals() {
	total := types.Zero()
	for _, c := range v.Charges {
		total = total.Add(c.Amount)
	}
	v.TotalCharges = total
}

// TotalChargePool returns the pool to distribute, summed from charge lines.
func (v *LandedCostVoucher) TotalChargePool() types.Money {
	total := types.Zero()
	for _, c := range v.Charges {
		total = total.Add(c.Amount)
	}
	return total
}

// Validate implements entity.Validatable.
func (v *LandedCostVoucher) Validate(ctx context.Context) error {
	if err := v.Document.Validate(ctx); err != nil {
		return err
	}

	if _, err := allocation.ParseBasis(v.Basis); err != nil {
		return err
	}

	if len(v.Receipts) == 0 {
		return apperror.NewValidation("at least one receipt reference is required").
			WithDetail("field", "receipts")
	}

	for i, ref := range v.Receipts {
		if ref.Kind != entity.SourceReceiptNote && ref.Kind != entity.SourceSupplierInvoice {
			return apperror.NewUnsupportedSourceKind(string(ref.Kind)).
				WithDetail("lineNo", i+1)
		}
		if id.IsNil(ref.SourceID) {
			return apperror.NewValidation("receipt reference requires a source document").
				WithDetail("field", "receipts").
				WithDetail("lineNo", i+1)
		}
	}

	if len(v.Charges) == 0 {
		return apperror.NewValidation("at least one charge line is required").
			WithDetail("field", "charges")
	}

	for i, c := range v.Charges {
		if c.Account == "" {
			return apperror.NewValidation("charge line requires an expense account").
				WithDetail("field", "charges").
				WithDetail("lineNo", i+1)
		}
		if c.Amount.IsZero() {
			return apperror.NewValidation("charge amount must be non-zero").
				WithDetail("field", "charges").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
