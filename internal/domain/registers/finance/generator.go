package finance

import (
	"time"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/allocation"
	"landedcost/internal/domain/receipts"
)

// ChargeCredit is the credit leg of one voucher charge line.
type ChargeCredit struct {
	Account string
	Amount  types.Money
}

// Generate builds the balanced posting set for a submitted voucher.
//
// Per item row: a debit on its valuation account for the row's full landed
// valuation (amount + charges already in valuation + allocated charge).
// Credits: the amount owed per liability account, the receipt's own valuation
// charges on its valuation-expense account, and each charge line's amount on
// its target expense account. Postings are aggregated per account.
//
// The debit/credit balance is verified, not assumed: a mismatch returns
// ImbalancedPosting and must abort the surrounding transaction.
func Generate(
	voucherID id.ID,
	postingDate time.Time,
	itemRows []receipts.ItemRow,
	allocated []allocation.AllocatedItem,
	charges []ChargeCredit,
) ([]entity.GLPosting, error) {
	if len(itemRows) != len(allocated) {
		return nil, apperror.NewInternal(nil).
			WithDetail("reason", "item rows and allocations out of step").
			WithDetail("rows", len(itemRows)).
			WithDetail("allocated", len(allocated))
	}

	acc := newAccumulator()

	for i, row := range itemRows {
		landed := row.Amount.
			Add(row.PriorValuationCharges).
			Add(allocated[i].AllocatedCharge)
		acc.debit(row.ValuationAccount, landed)

		acc.credit(row.LiabilityAccount, row.Amount)
		acc.credit(row.ValuationExpenseAccount, row.PriorValuationCharges)
	}

	for _, charge := range charges {
		acc.credit(charge.Account, charge.Amount)
	}

	postings := acc.postings(voucherID, postingDate)

	totalDebit, totalCredit := Totals(postings)
	if !totalDebit.Equal(totalCredit) {
		return nil, apperror.NewImbalancedPosting(totalDebit.String(), totalCredit.String()).
			WithDetail("voucher_id", voucherID.String())
	}

	return postings, nil
}

// Totals sums the debit and credit columns of a posting set.
func Totals(postings []entity.GLPosting) (debit, credit types.Money) {
	debit, credit = types.Zero(), types.Zero()
	for _, p := range postings {
		debit = debit.Add(p.Debit)
		credit = credit.Add(p.Credit)
	}
	return debit, credit
}

// accumulator aggregates amounts per account, preserving first-seen order.
type accumulator struct {
	order  []string
	byAcct map[string]*amounts
}

type amounts struct {
	debit  types.Money
	credit types.Money
}

func newAccumulator() *accumulator {
	return &accumulator{
		byAcct: make(map[string]*amounts),
	}
}

func (a *accumulator) get(account string) *amounts {
	if amt, ok := a.byAcct[account]; ok {
		return amt
	}
	amt := &amounts{debit: types.Zero(), credit: types.Zero()}
	a.byAcct[account] = amt
	a.order = append(a.order, account)
	return amt
}

func (a *accumulator) debit(account string, amount types.Money) {
	if amount.IsZero() {
		return
	}
	amt := a.get(account)
	amt.debit = amt.debit.Add(amount)
}

func (a *accumulator) credit(account string, amount types.Money) {
	if amount.IsZero() {
		return
	}
	amt := a.get(account)
	amt.credit = amt.credit.Add(amount)
}

func (a *accumulator) postings(voucherID id.ID, postingDate time.Time) []entity.GLPosting {
	postings := make([]entity.GLPosting, 0, len(a.order))
	for _, account := range a.order {
		amt := a.byAcct[account]
		postings = append(postings, entity.NewGLPosting(voucherID, account, amt.debit, amt.credit, postingDate))
	}
	return postings
}
