package dto

import (
	"time"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/allocation"
	lcv "landedcost/internal/domain/documents/landed_cost_voucher"
	"landedcost/internal/domain/receipts"
)

// ReceiptReferenceRequest is one referenced purchase receipt.
type ReceiptReferenceRequest struct {
	Kind        string      `json:"kind" binding:"required"`
	SourceID    string      `json:"sourceId" binding:"required"`
	Supplier    string      `json:"supplier"`
	PostingDate time.Time   `json:"postingDate"`
	GrandTotal  types.Money `json:"grandTotal"`
}

// ChargeLineRequest is one charge to distribute.
type ChargeLineRequest struct {
	Description string      `json:"description"`
	Account     string      `json:"account" binding:"required"`
	Amount      types.Money `json:"amount" binding:"required"`
}

// CreateVoucherRequest creates a draft voucher.
type CreateVoucherRequest struct {
	Company  string                    `json:"company" binding:"required"`
	Basis    string                    `json:"basis" binding:"required"`
	Date     *time.Time                `json:"date"`
	Comment  string                    `json:"comment"`
	Receipts []ReceiptReferenceRequest `json:"receipts" binding:"required"`
	Charges  []ChargeLineRequest       `json:"charges" binding:"required"`
}

// ToEntity builds the domain document.
func (r CreateVoucherRequest) ToEntity() (*lcv.LandedCostVoucher, error) {
	doc := lcv.NewLandedCostVoucher(r.Company, r.Basis)
	doc.Comment = r.Comment
	if r.Date != nil {
		doc.Date = r.Date.UTC()
	}

	for _, ref := range r.Receipts {
		sourceID, err := id.Parse(ref.SourceID)
		if err != nil {
			return nil, err
		}
		doc.AddReceipt(receipts.Reference{
			Kind:        entity.SourceKind(ref.Kind),
			SourceID:    sourceID,
			Supplier:    ref.Supplier,
			PostingDate: ref.PostingDate,
			GrandTotal:  ref.GrandTotal,
		})
	}

	for _, c := range r.Charges {
		doc.AddCharge(c.Description, c.Account, c.Amount)
	}

	return doc, nil
}

// UpdateVoucherRequest replaces a draft voucher's mutable fields.
type UpdateVoucherRequest struct {
	Basis    *string                   `json:"basis"`
	Date     *time.Time                `json:"date"`
	Comment  *string                   `json:"comment"`
	Receipts []ReceiptReferenceRequest `json:"receipts"`
	Charges  []ChargeLineRequest       `json:"charges"`
}

// ApplyTo applies the request onto an existing draft.
func (r UpdateVoucherRequest) ApplyTo(doc *lcv.LandedCostVoucher) error {
	if r.Basis != nil {
		doc.Basis = *r.Basis
	}
	if r.Date != nil {
		doc.Date = r.Date.UTC()
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	if r.Receipts != nil {
		doc.Receipts = doc.Receipts[:0]
		for _, ref := range r.Receipts {
			sourceID, err := id.Parse(ref.SourceID)
			if err != nil {
				return err
			}
			doc.AddReceipt(receipts.Reference{
				Kind:        entity.SourceKind(ref.Kind),
				SourceID:    sourceID,
				Supplier:    ref.Supplier,
				PostingDate: ref.PostingDate,
				GrandTotal:  ref.GrandTotal,
			})
		}
	}

	if r.Charges != nil {
		doc.Charges = doc.Charges[:0]
		for _, c := range r.Charges {
			doc.AddCharge(c.Description, c.Account, c.Amount)
		}
	}

	return nil
}

// VoucherResponse is the API view of a voucher.
type VoucherResponse struct {
	ID           string    `json:"id"`
	Version      int       `json:"version"`
	Number       string    `json:"number"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	Company      string    `json:"company"`
	Comment      string    `json:"comment,omitempty"`
	Basis        string    `json:"basis"`
	TotalCharges string    `json:"totalCharges"`

	Receipts       []ReceiptReferenceResponse `json:"receipts"`
	Charges        []ChargeLineResponse       `json:"charges"`
	AllocatedItems []allocation.AllocatedItem `json:"allocatedItems,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReceiptReferenceResponse mirrors one receipt reference line.
type ReceiptReferenceResponse struct {
	LineID      string      `json:"lineId"`
	Kind        string      `json:"kind"`
	SourceID    string      `json:"sourceId"`
	Supplier    string      `json:"supplier,omitempty"`
	PostingDate time.Time   `json:"postingDate"`
	GrandTotal  types.Money `json:"grandTotal"`
}

// ChargeLineResponse mirrors one charge line.
type ChargeLineResponse struct {
	LineID      string      `json:"lineId"`
	LineNo      int         `json:"lineNo"`
	Description string      `json:"description,omitempty"`
	Account     string      `json:"account"`
	Amount      types.Money `json:"amount"`
}

// FromVoucher creates VoucherResponse from the domain document.
func FromVoucher(doc *lcv.LandedCostVoucher) *VoucherResponse {
	refs := make([]ReceiptReferenceResponse, 0, len(doc.Receipts))
	for _, ref := range doc.Receipts {
		refs = append(refs, ReceiptReferenceResponse{
			LineID:      ref.LineID.String(),
			Kind:        string(ref.Kind),
			SourceID:    ref.SourceID.String(),
			Supplier:    ref.Supplier,
			PostingDate: ref.PostingDate,
			GrandTotal:  ref.GrandTotal,
		})
	}

	charges := make([]ChargeLineResponse, 0, len(doc.Charges))
	for _, c := range doc.Charges {
		charges = append(charges, ChargeLineResponse{
			LineID:      c.LineID.String(),
			LineNo:      c.LineNo,
			Description: c.Description,
			Account:     c.Account,
			Amount:      c.Amount,
		})
	}

	return &VoucherResponse{
		ID:             doc.ID.String(),
		Version:        doc.Version,
		Number:         doc.Number,
		Date:           doc.Date,
		Status:         string(doc.Status),
		Company:        doc.Company,
		Comment:        doc.Comment,
		Basis:          doc.Basis,
		TotalCharges:   doc.TotalCharges.StringFixed(types.LedgerScale),
		Receipts:       refs,
		Charges:        charges,
		AllocatedItems: doc.AllocatedItems,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

// SubmitResultResponse is what a submission returned.
type SubmitResultResponse struct {
	AllocatedItems []allocation.AllocatedItem `json:"allocatedItems"`
	Postings       []entity.GLPosting         `json:"postings,omitempty"`
}

// VoucherListResponse is the paginated voucher list.
type VoucherListResponse struct {
	Items      []*VoucherResponse `json:"items"`
	TotalCount int64              `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}
