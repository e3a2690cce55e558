package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/allocation"
	"landedcost/internal/domain/receipts"
)

var postingDate = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

func postingRow(amount, prior string) receipts.ItemRow {
	return receipts.ItemRow{
		ItemCode:                "ITEM-A",
		Warehouse:               "WH-MAIN",
		Quantity:                types.NewQuantityFromFloat64(1),
		Amount:                  types.MustMoney(amount),
		PriorValuationCharges:   types.MustMoney(prior),
		ValuationAccount:        "1410",
		ValuationExpenseAccount: "5215",
		LiabilityAccount:        "2150",
	}
}

func allocatedWith(charges ...string) []allocation.AllocatedItem {
	items := make([]allocation.AllocatedItem, 0, len(charges))
	for _, c := range charges {
		items = append(items, allocation.AllocatedItem{AllocatedCharge: types.MustMoney(c)})
	}
	return items
}

func byAccount(postings []entity.GLPosting) map[string]entity.GLPosting {
	out := make(map[string]entity.GLPosting, len(postings))
	for _, p := range postings {
		out[p.Account] = p
	}
	return out
}

func TestGenerate_BalancedAndAggregated(t *testing.T) {
	voucherID := id.New()
	rows := []receipts.ItemRow{
		postingRow("250", "0"),
		postingRow("250", "0"),
	}
	charges := []ChargeCredit{
		{Account: "5210", Amount: types.MustMoney("40")},
		{Account: "5220", Amount: types.MustMoney("10")},
	}

	postings, err := Generate(voucherID, postingDate, rows, allocatedWith("25", "25"), charges)
	require.NoError(t, err)

	// Both rows hit the same valuation account, so the set aggregates to
	// four accounts in first-seen order.
	require.Len(t, postings, 4)
	assert.Equal(t, "1410", postings[0].Account)
	assert.Equal(t, "2150", postings[1].Account)
	assert.Equal(t, "5210", postings[2].Account)
	assert.Equal(t, "5220", postings[3].Account)

	accounts := byAccount(postings)
	assert.True(t, accounts["1410"].Debit.Equal(types.MustMoney("550")))
	assert.True(t, accounts["2150"].Credit.Equal(types.MustMoney("500")))
	assert.True(t, accounts["5210"].Credit.Equal(types.MustMoney("40")))
	assert.True(t, accounts["5220"].Credit.Equal(types.MustMoney("10")))

	debit, credit := Totals(postings)
	assert.True(t, debit.Equal(credit))
	assert.True(t, debit.Equal(types.MustMoney("550")))

	for _, p := range postings {
		assert.Equal(t, voucherID, p.VoucherID)
		assert.Equal(t, postingDate, p.PostingDate)
		assert.False(t, p.IsReversal)
	}
}

func TestGenerate_PriorValuationCharges(t *testing.T) {
	rows := []receipts.ItemRow{postingRow("250", "50")}
	charges := []ChargeCredit{{Account: "5210", Amount: types.MustMoney("25")}}

	postings, err := Generate(id.New(), postingDate, rows, allocatedWith("25"), charges)
	require.NoError(t, err)

	accounts := byAccount(postings)
	assert.True(t, accounts["1410"].Debit.Equal(types.MustMoney("325")),
		"debit carries amount + prior charges + allocated charge")
	assert.True(t, accounts["2150"].Credit.Equal(types.MustMoney("250")))
	assert.True(t, accounts["5215"].Credit.Equal(types.MustMoney("50")))
	assert.True(t, accounts["5210"].Credit.Equal(types.MustMoney("25")))
}

func TestGenerate_SkipsZeroAmounts(t *testing.T) {
	rows := []receipts.ItemRow{postingRow("250", "0")}
	charges := []ChargeCredit{{Account: "5210", Amount: types.MustMoney("25")}}

	postings, err := Generate(id.New(), postingDate, rows, allocatedWith("25"), charges)
	require.NoError(t, err)

	accounts := byAccount(postings)
	_, ok := accounts["5215"]
	assert.False(t, ok, "a zero prior-charges credit must not produce a posting")
}

func TestGenerate_Imbalance(t *testing.T) {
	rows := []receipts.ItemRow{postingRow("250", "0")}
	// The allocation says 30 but the charge lines only credit 25.
	charges := []ChargeCredit{{Account: "5210", Amount: types.MustMoney("25")}}

	_, err := Generate(id.New(), postingDate, rows, allocatedWith("30"), charges)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeImbalancedPosting))
}

func TestGenerate_RowCountMismatch(t *testing.T) {
	rows := []receipts.ItemRow{postingRow("250", "0")}

	_, err := Generate(id.New(), postingDate, rows, allocatedWith("10", "15"), nil)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}
