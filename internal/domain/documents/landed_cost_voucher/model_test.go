package landed_cost_voucher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/receipts"
)

func validVoucher() *LandedCostVoucher {
	doc := NewLandedCostVoucher("Acme Trading", "amount")
	doc.AddReceipt(receipts.Reference{
		Kind:        entity.SourceReceiptNote,
		SourceID:    id.New(),
		Supplier:    "Global Freight Co",
		PostingDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		GrandTotal:  types.MustMoney("500"),
	})
	doc.AddCharge("Sea freight", "5210", types.MustMoney("50"))
	return doc
}

func TestNewLandedCostVoucher(t *testing.T) {
	doc := NewLandedCostVoucher("Acme Trading", "amount")

	assert.Equal(t, entity.StatusDraft, doc.Status)
	assert.True(t, doc.TotalCharges.IsZero())
	assert.Empty(t, doc.Receipts)
	assert.Empty(t, doc.Charges)
}

func TestAddCharge_RecalculatesTotals(t *testing.T) {
	doc := NewLandedCostVoucher("Acme Trading", "amount")
	doc.AddCharge("Sea freight", "5210", types.MustMoney("40"))
	doc.AddCharge("Customs duty", "5220", types.MustMoney("10"))

	assert.True(t, doc.TotalCharges.Equal(types.MustMoney("50")))
	assert.True(t, doc.TotalChargePool().Equal(types.MustMoney("50")))
	assert.Equal(t, 2, doc.Charges[1].LineNo)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(doc *LandedCostVoucher)
		wantCode string
	}{
		{
			name:   "valid",
			mutate: func(doc *LandedCostVoucher) {},
		},
		{
			name:     "missing company",
			mutate:   func(doc *LandedCostVoucher) { doc.Company = "" },
			wantCode: apperror.CodeValidation,
		},
		{
			name:     "unknown basis",
			mutate:   func(doc *LandedCostVoucher) { doc.Basis = "volume" },
			wantCode: apperror.CodeInvalidDistributionBasis,
		},
		{
			name:     "no receipts",
			mutate:   func(doc *LandedCostVoucher) { doc.Receipts = nil },
			wantCode: apperror.CodeValidation,
		},
		{
			name: "unsupported source kind",
			mutate: func(doc *LandedCostVoucher) {
				doc.Receipts[0].Kind = entity.SourceLandedCostVoucher
			},
			wantCode: apperror.CodeUnsupportedSourceKind,
		},
		{
			name: "missing source document",
			mutate: func(doc *LandedCostVoucher) {
				doc.Receipts[0].SourceID = id.ID{}
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name:     "no charges",
			mutate:   func(doc *LandedCostVoucher) { doc.Charges = nil },
			wantCode: apperror.CodeValidation,
		},
		{
			name: "charge without account",
			mutate: func(doc *LandedCostVoucher) {
				doc.Charges[0].Account = ""
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "zero charge amount",
			mutate: func(doc *LandedCostVoucher) {
				doc.Charges[0].Amount = types.Zero()
			},
			wantCode: apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validVoucher()
			tt.mutate(doc)

			err := doc.Validate(context.Background())
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestLifecycle(t *testing.T) {
	doc := validVoucher()

	require.NoError(t, doc.MarkSubmitted())
	assert.Equal(t, entity.StatusSubmitted, doc.Status)

	err := doc.MarkSubmitted()
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))

	require.NoError(t, doc.MarkCancelled())
	assert.Equal(t, entity.StatusCancelled, doc.Status)

	err = doc.MarkCancelled()
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}
