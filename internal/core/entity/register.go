package entity

import (
	"time"

	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
)

// SourceKind identifies the document type that recorded a ledger row.
type SourceKind string

const (
	// SourceReceiptNote is a goods receipt without a supplier invoice.
	// Its liability leg sits on a provisional account until billed.
	SourceReceiptNote SourceKind = "receipt_note"

	// SourceSupplierInvoice is a stock-affecting supplier invoice.
	// Its liability leg posts straight to the payable account.
	SourceSupplierInvoice SourceKind = "supplier_invoice_with_stock"

	// SourceLandedCostVoucher marks rows recorded by this engine.
	SourceLandedCostVoucher SourceKind = "landed_cost_voucher"
)

// StockLedgerEntry is one row of the quantity/value movement ledger.
// Rows are ordered per (item, warehouse) by occurrence time, then sequence.
//
// This engine never creates or deletes these rows and never touches their
// quantity fields; submission only shifts StockValue.
type StockLedgerEntry struct {
	// LineID is the unique identifier for this ledger row (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// Dimensions
	ItemCode  string `db:"item_code" json:"itemCode"`
	Warehouse string `db:"warehouse" json:"warehouse"`

	// Recorder is the document that created this row
	RecorderKind SourceKind `db:"recorder_kind" json:"recorderKind"`
	RecorderID   id.ID      `db:"recorder_id" json:"recorderId"`

	// Ordering within the (item, warehouse) chain
	Period   time.Time `db:"period" json:"period"`
	Sequence int64     `db:"sequence" json:"sequence"`

	// Resources
	QtyChange  types.Quantity `db:"qty_change" json:"qtyChange"`
	QtyAfter   types.Quantity `db:"qty_after" json:"qtyAfter"`
	StockValue types.Money    `db:"stock_value" json:"stockValue"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Before reports whether e precedes other in the chain ordering
// (occurrence time, then sequence number).
func (e *StockLedgerEntry) Before(other *StockLedgerEntry) bool {
	if e.Period.Equal(other.Period) {
		return e.Sequence < other.Sequence
	}
	return e.Period.Before(other.Period)
}

// SerialCostRecord tracks the acquisition cost of one serialized stock unit.
type SerialCostRecord struct {
	SerialNo  string      `db:"serial_no" json:"serialNo"`
	ItemCode  string      `db:"item_code" json:"itemCode"`
	Warehouse string      `db:"warehouse" json:"warehouse"`
	// PurchaseCost is the landed per-unit cost: invoice price plus every
	// charge allocated to this unit so far.
	PurchaseCost types.Money `db:"purchase_cost" json:"purchaseCost"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// GLPosting is one row of the double-entry financial ledger, scoped to the
// voucher that generated it. Within a voucher's full posting set the debit
// and credit totals are equal.
type GLPosting struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	VoucherID id.ID `db:"voucher_id" json:"voucherId"`

	Account string      `db:"account" json:"account"`
	Debit   types.Money `db:"debit" json:"debit"`
	Credit  types.Money `db:"credit" json:"credit"`

	PostingDate time.Time `db:"posting_date" json:"postingDate"`

	// IsReversal marks rows written by cancellation. History is never
	// deleted; cancelling appends mirrored rows instead.
	IsReversal bool `db:"is_reversal" json:"isReversal"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewGLPosting creates a posting row for a voucher.
func NewGLPosting(voucherID id.ID, account string, debit, credit types.Money, postingDate time.Time) GLPosting {
	return GLPosting{
		LineID:      id.New(),
		VoucherID:   voucherID,
		Account:     account,
		Debit:       debit,
		Credit:      credit,
		PostingDate: postingDate,
		CreatedAt:   time.Now().UTC(),
	}
}
