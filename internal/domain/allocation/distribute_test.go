package allocation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/receipts"
)

func testRow(itemCode string, qty float64, amount, weight string) receipts.ItemRow {
	return receipts.ItemRow{
		SourceKind: entity.SourceReceiptNote,
		SourceID:   id.New(),
		ItemCode:   itemCode,
		Warehouse:  "WH-MAIN",
		Quantity:   types.NewQuantityFromFloat64(qty),
		Amount:     types.MustMoney(amount),
		Weight:     decimal.RequireFromString(weight),
	}
}

func TestParseBasis(t *testing.T) {
	tests := []struct {
		input   string
		want    Basis
		wantErr bool
	}{
		{"amount", BasisAmount, false},
		{"Amount", BasisAmount, false},
		{" QUANTITY ", BasisQuantity, false},
		{"weight", BasisWeight, false},
		{"value", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBasis(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDistributionBasis))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDistribute_AmountBasis(t *testing.T) {
	rows := []receipts.ItemRow{
		testRow("ITEM-A", 2, "250", "10"),
		testRow("ITEM-B", 5, "250", "30"),
	}

	items, err := Distribute(context.Background(), types.MustMoney("50"), rows, BasisAmount)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].AllocatedCharge.Equal(types.MustMoney("25")))
	assert.True(t, items[1].AllocatedCharge.Equal(types.MustMoney("25")))
	assert.True(t, items[0].PerUnitDelta.Equal(types.MustMoney("12.5")))
	assert.True(t, items[1].PerUnitDelta.Equal(types.MustMoney("5")))

	assert.Equal(t, 1, items[0].LineNo)
	assert.Equal(t, 2, items[1].LineNo)
	assert.Equal(t, "ITEM-A", items[0].ItemCode)
	assert.Equal(t, rows[0].SourceID, items[0].SourceID)
}

func TestDistribute_QuantityBasis(t *testing.T) {
	rows := []receipts.ItemRow{
		testRow("ITEM-A", 2, "999", "0"),
		testRow("ITEM-B", 3, "1", "0"),
	}

	items, err := Distribute(context.Background(), types.MustMoney("50"), rows, BasisQuantity)
	require.NoError(t, err)

	assert.True(t, items[0].AllocatedCharge.Equal(types.MustMoney("20")))
	assert.True(t, items[1].AllocatedCharge.Equal(types.MustMoney("30")))
}

func TestDistribute_WeightBasis(t *testing.T) {
	rows := []receipts.ItemRow{
		testRow("ITEM-A", 1, "500", "10"),
		testRow("ITEM-B", 1, "500", "30"),
	}

	items, err := Distribute(context.Background(), types.MustMoney("40"), rows, BasisWeight)
	require.NoError(t, err)

	assert.True(t, items[0].AllocatedCharge.Equal(types.MustMoney("10")))
	assert.True(t, items[1].AllocatedCharge.Equal(types.MustMoney("30")))
}

func TestDistribute_RoundingResidue_FirstRowOnTie(t *testing.T) {
	// 1.00 over three equal rows rounds to 0.33 each; the 0.01 residue must
	// land on the first row and the total must reproduce the pool exactly.
	rows := []receipts.ItemRow{
		testRow("ITEM-A", 1, "100", "0"),
		testRow("ITEM-B", 1, "100", "0"),
		testRow("ITEM-C", 1, "100", "0"),
	}

	pool := types.MustMoney("1.00")
	items, err := Distribute(context.Background(), pool, rows, BasisAmount)
	require.NoError(t, err)

	assert.True(t, items[0].AllocatedCharge.Equal(types.MustMoney("0.34")))
	assert.True(t, items[1].AllocatedCharge.Equal(types.MustMoney("0.33")))
	assert.True(t, items[2].AllocatedCharge.Equal(types.MustMoney("0.33")))

	sum := types.Zero()
	for _, item := range items {
		sum = sum.Add(item.AllocatedCharge)
	}
	assert.True(t, sum.Equal(pool))
}

func TestDistribute_RoundingResidue_LargestBasisRow(t *testing.T) {
	// Shares 0.17 + 0.17 + 0.67 overshoot the pool by 0.01; the correction
	// goes to the row with the largest basis value.
	rows := []receipts.ItemRow{
		testRow("ITEM-A", 1, "1", "0"),
		testRow("ITEM-B", 1, "1", "0"),
		testRow("ITEM-C", 1, "4", "0"),
	}

	pool := types.MustMoney("1.00")
	items, err := Distribute(context.Background(), pool, rows, BasisAmount)
	require.NoError(t, err)

	assert.True(t, items[0].AllocatedCharge.Equal(types.MustMoney("0.17")))
	assert.True(t, items[1].AllocatedCharge.Equal(types.MustMoney("0.17")))
	assert.True(t, items[2].AllocatedCharge.Equal(types.MustMoney("0.66")))

	sum := types.Zero()
	for _, item := range items {
		sum = sum.Add(item.AllocatedCharge)
	}
	assert.True(t, sum.Equal(pool))
}

func TestDistribute_ZeroBasisTotal(t *testing.T) {
	rows := []receipts.ItemRow{
		testRow("ITEM-A", 2, "250", "0"),
		testRow("ITEM-B", 5, "250", "0"),
	}

	_, err := Distribute(context.Background(), types.MustMoney("50"), rows, BasisWeight)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeZeroDistributionBasis))
}

func TestDistribute_NonPositiveQuantity(t *testing.T) {
	rows := []receipts.ItemRow{
		testRow("ITEM-A", 0, "250", "10"),
	}

	_, err := Distribute(context.Background(), types.MustMoney("50"), rows, BasisAmount)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
