// Package receipts normalizes the supported purchase source documents into a
// uniform item-row view consumed by the distribution and posting components.
package receipts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
)

// Reference is a weak reference to an external receipt document.
// The voucher owns the reference, never the document itself.
type Reference struct {
	LineID      id.ID             `db:"line_id" json:"lineId"`
	Kind        entity.SourceKind `db:"kind" json:"kind"`
	SourceID    id.ID             `db:"source_id" json:"sourceId"`
	Supplier    string            `db:"supplier" json:"supplier"`
	PostingDate time.Time         `db:"posting_date" json:"postingDate"`
	GrandTotal  types.Money       `db:"grand_total" json:"grandTotal"`
}

// LiabilityKind classifies the account that represents "amount owed" for a
// resolved row set. Goods-receipt-only flows owe on a provisional account
// until the supplier bills; invoice-with-stock flows owe the payable directly.
type LiabilityKind string

const (
	LiabilityProvisional LiabilityKind = "provisional"
	LiabilityPayable     LiabilityKind = "payable"
)

// ItemRow is the uniform view of one item line of a resolved receipt.
type ItemRow struct {
	SourceKind entity.SourceKind `json:"sourceKind"`
	SourceID   id.ID             `json:"sourceId"`

	ItemCode  string `json:"itemCode"`
	Warehouse string `json:"warehouse"`

	Quantity types.Quantity  `json:"quantity"`
	Amount   types.Money     `json:"amount"`
	Weight   decimal.Decimal `json:"weight"`

	// PriorValuationCharges are charges the receipt itself already folded
	// into valuation (e.g. taxes marked as included in valuation).
	PriorValuationCharges types.Money `json:"priorValuationCharges"`

	// Accounts resolved from the item master and the source document.
	ValuationAccount        string        `json:"valuationAccount"`
	ValuationExpenseAccount string        `json:"valuationExpenseAccount"`
	LiabilityKind           LiabilityKind `json:"liabilityKind"`
	LiabilityAccount        string        `json:"liabilityAccount"`

	// Serial tracking
	Serialized bool     `json:"serialized"`
	SerialNos  []string `json:"serialNos,omitempty"`
}

// SourceLine is one item line as stored on the underlying receipt document.
type SourceLine struct {
	ItemCode              string
	Warehouse             string
	Quantity              types.Quantity
	Amount                types.Money
	Weight                decimal.Decimal
	PriorValuationCharges types.Money
	SerialNos             []string
}

// SourceDoc is the slice of an external receipt document this engine reads.
type SourceDoc struct {
	Kind     entity.SourceKind
	SourceID id.ID

	// LiabilityAccount is the account owed for this document's items:
	// provisional for receipt notes, payable for invoices with stock.
	LiabilityAccount string

	// ValuationExpenseAccount carries charges already included in valuation.
	ValuationExpenseAccount string

	Lines []SourceLine
}

// SourceStore loads underlying receipt documents by (kind, id).
// Implemented by the external document store.
type SourceStore interface {
	Load(ctx context.Context, kind entity.SourceKind, sourceID id.ID) (*SourceDoc, error)
}

// Resolver resolves a receipt reference into uniform item rows.
type Resolver interface {
	Resolve(ctx context.Context, ref Reference) ([]ItemRow, error)
}
