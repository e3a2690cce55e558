package landed_cost_voucher_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	lcv "landedcost/internal/domain/documents/landed_cost_voucher"
	"landedcost/internal/domain/itemmaster"
	"landedcost/internal/domain/receipts"
	"landedcost/internal/domain/registers/finance"
	"landedcost/internal/domain/registers/serialcost"
	"landedcost/internal/domain/registers/stockledger"
	"landedcost/internal/infrastructure/memory"
)

var serialNos = []string{"SN-001", "SN-002", "SN-003", "SN-004", "SN-005"}

// fixture wires the voucher service against in-memory registers, seeded with
// one posted purchase receipt:
//
//	ITEM-A  qty 2  amount 250  plain stock
//	ITEM-B  qty 5  amount 250  serialized (SN-001..SN-005, 50 per unit)
//
// The ITEM-A chain has an earlier unrelated entry and a later consumption
// entry around the receipt's own row.
type fixture struct {
	repo     *memory.VoucherRepository
	stock    *memory.StockLedgerRepository
	serials  *memory.SerialCostRepository
	postings *memory.PostingRepository
	svc      *lcv.Service

	receiptID id.ID
	earlierA  id.ID
	sourceA   id.ID
	laterA    id.ID
	sourceB   id.ID
}

func newFixture(t *testing.T, cfg lcv.Config) *fixture {
	t.Helper()

	f := &fixture{
		repo:      memory.NewVoucherRepository(),
		stock:     memory.NewStockLedgerRepository(),
		serials:   memory.NewSerialCostRepository(),
		postings:  memory.NewPostingRepository(),
		receiptID: id.New(),
	}

	sources := memory.NewSourceStore()
	sources.Put(receipts.SourceDoc{
		Kind:                    entity.SourceReceiptNote,
		SourceID:                f.receiptID,
		LiabilityAccount:        "2150",
		ValuationExpenseAccount: "5215",
		Lines: []receipts.SourceLine{
			{
				ItemCode:  "ITEM-A",
				Warehouse: "WH-MAIN",
				Quantity:  types.NewQuantityFromFloat64(2),
				Amount:    types.MustMoney("250"),
				Weight:    decimal.Zero,
			},
			{
				ItemCode:  "ITEM-B",
				Warehouse: "WH-MAIN",
				Quantity:  types.NewQuantityFromFloat64(5),
				Amount:    types.MustMoney("250"),
				Weight:    decimal.Zero,
				SerialNos: serialNos,
			},
		},
	})

	items := memory.NewItemRepository()
	items.Put(itemmaster.ItemProfile{ItemCode: "ITEM-A", Class: itemmaster.ClassStock, ValuationAccount: "1410"})
	items.Put(itemmaster.ItemProfile{ItemCode: "ITEM-B", Class: itemmaster.ClassStock, ValuationAccount: "1420", Serialized: true})

	f.earlierA = f.seedEntry("ITEM-A", id.New(), 1, "100")
	f.sourceA = f.seedEntry("ITEM-A", f.receiptID, 10, "250")
	f.laterA = f.seedEntry("ITEM-A", id.New(), 20, "150")
	f.sourceB = f.seedEntry("ITEM-B", f.receiptID, 10, "250")

	for _, sn := range serialNos {
		f.serials.Put(entity.SerialCostRecord{
			SerialNo:     sn,
			ItemCode:     "ITEM-B",
			Warehouse:    "WH-MAIN",
			PurchaseCost: types.MustMoney("50"),
		})
	}

	f.svc = lcv.NewService(
		f.repo,
		receipts.NewAdapter(sources, items),
		stockledger.NewService(f.stock),
		serialcost.NewService(f.serials),
		finance.NewService(f.postings),
		memory.NewChainLocker(time.Second),
		memory.NewNumerator(),
		memory.NewTxManager(),
		cfg,
	)

	return f
}

func (f *fixture) seedEntry(itemCode string, recorderID id.ID, day int, value string) id.ID {
	entry := entity.StockLedgerEntry{
		LineID:       id.New(),
		ItemCode:     itemCode,
		Warehouse:    "WH-MAIN",
		RecorderKind: entity.SourceReceiptNote,
		RecorderID:   recorderID,
		Period:       time.Date(2026, 8, day, 10, 0, 0, 0, time.UTC),
		Sequence:     1,
		QtyChange:    types.NewQuantityFromFloat64(2),
		QtyAfter:     types.NewQuantityFromFloat64(2),
		StockValue:   types.MustMoney(value),
	}
	f.stock.Append(entry)
	return entry.LineID
}

func (f *fixture) draftVoucher(t *testing.T, basis string) *lcv.LandedCostVoucher {
	t.Helper()

	doc := lcv.NewLandedCostVoucher("Acme Trading", basis)
	doc.AddReceipt(receipts.Reference{
		Kind:        entity.SourceReceiptNote,
		SourceID:    f.receiptID,
		Supplier:    "Global Freight Co",
		PostingDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		GrandTotal:  types.MustMoney("500"),
	})
	doc.AddCharge("Sea freight", "5210", types.MustMoney("40"))
	doc.AddCharge("Customs duty", "5220", types.MustMoney("10"))
	require.NoError(t, f.svc.Create(context.Background(), doc))
	return doc
}

func (f *fixture) stockValue(t *testing.T, lineID id.ID) types.Money {
	t.Helper()
	for _, e := range f.stock.Entries() {
		if e.LineID == lineID {
			return e.StockValue
		}
	}
	t.Fatalf("ledger row %s not found", lineID)
	return types.Zero()
}

func (f *fixture) serialCost(t *testing.T, serialNo string) types.Money {
	t.Helper()
	record, err := f.serials.GetBySerialNo(context.Background(), serialNo)
	require.NoError(t, err)
	return record.PurchaseCost
}

func assertMoney(t *testing.T, want string, got types.Money, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(types.MustMoney(want)),
		"want %s, got %s: %s", want, got, fmt.Sprint(msgAndArgs...))
}

func TestCreate_AssignsSequentialNumbers(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())

	first := f.draftVoucher(t, "amount")
	second := f.draftVoucher(t, "amount")

	year := time.Now().Format("2006")
	assert.Equal(t, "LCV-"+year+"-00001", first.Number)
	assert.Equal(t, "LCV-"+year+"-00002", second.Number)
}

func TestSubmit_DistributesRevaluesAndPosts(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	ctx := context.Background()
	doc := f.draftVoucher(t, "amount")

	result, err := f.svc.Submit(ctx, doc.ID)
	require.NoError(t, err)

	// Allocation: the 50 pool splits 25/25 on equal amounts.
	require.Len(t, result.AllocatedItems, 2)
	assertMoney(t, "25", result.AllocatedItems[0].AllocatedCharge)
	assertMoney(t, "25", result.AllocatedItems[1].AllocatedCharge)
	assertMoney(t, "12.5", result.AllocatedItems[0].PerUnitDelta, "qty 2")
	assertMoney(t, "5", result.AllocatedItems[1].PerUnitDelta, "qty 5")

	// Stock ledger: the receipt's rows and everything after shift; rows
	// before the receipt keep their value.
	assertMoney(t, "100", f.stockValue(t, f.earlierA))
	assertMoney(t, "275", f.stockValue(t, f.sourceA))
	assertMoney(t, "175", f.stockValue(t, f.laterA))
	assertMoney(t, "275", f.stockValue(t, f.sourceB))

	// Serial costs: 25 over five units.
	for _, sn := range serialNos {
		assertMoney(t, "55", f.serialCost(t, sn), sn)
	}

	// Postings: balanced, aggregated per account.
	require.Len(t, result.Postings, 5)
	debit, credit := finance.Totals(result.Postings)
	assert.True(t, debit.Equal(credit))
	assertMoney(t, "550", debit)

	byAccount := make(map[string]entity.GLPosting)
	for _, p := range result.Postings {
		byAccount[p.Account] = p
	}
	assertMoney(t, "275", byAccount["1410"].Debit)
	assertMoney(t, "275", byAccount["1420"].Debit)
	assertMoney(t, "500", byAccount["2150"].Credit)
	assertMoney(t, "40", byAccount["5210"].Credit)
	assertMoney(t, "10", byAccount["5220"].Credit)

	// The voucher persisted its derived rows and moved to submitted.
	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSubmitted, stored.Status)
	assert.Len(t, stored.AllocatedItems, 2)
}

func TestSubmit_Twice(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	ctx := context.Background()
	doc := f.draftVoucher(t, "amount")

	_, err := f.svc.Submit(ctx, doc.ID)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}

func TestSubmit_ZeroBasis_LeavesLedgersUntouched(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	ctx := context.Background()

	// Weight basis over weightless lines cannot divide the pool.
	doc := f.draftVoucher(t, "weight")

	_, err := f.svc.Submit(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeZeroDistributionBasis))

	assertMoney(t, "250", f.stockValue(t, f.sourceA))
	assertMoney(t, "250", f.stockValue(t, f.sourceB))
	for _, sn := range serialNos {
		assertMoney(t, "50", f.serialCost(t, sn))
	}

	posted, err := f.postings.ListByVoucher(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, posted)

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, stored.Status)
}

func TestSubmit_WithoutPerpetualInventory(t *testing.T) {
	f := newFixture(t, lcv.Config{PerpetualInventory: false})
	ctx := context.Background()
	doc := f.draftVoucher(t, "amount")

	result, err := f.svc.Submit(ctx, doc.ID)
	require.NoError(t, err)

	assert.Empty(t, result.Postings)
	posted, err := f.postings.ListByVoucher(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, posted)

	// Stock and serial registers still move.
	assertMoney(t, "275", f.stockValue(t, f.sourceA))
	assertMoney(t, "55", f.serialCost(t, "SN-001"))
}

func TestCancel_ReversesEverything(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	ctx := context.Background()
	doc := f.draftVoucher(t, "amount")

	_, err := f.svc.Submit(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, doc.ID))

	// Stock values and serial costs are back to the pre-submission state.
	assertMoney(t, "100", f.stockValue(t, f.earlierA))
	assertMoney(t, "250", f.stockValue(t, f.sourceA))
	assertMoney(t, "150", f.stockValue(t, f.laterA))
	assertMoney(t, "250", f.stockValue(t, f.sourceB))
	for _, sn := range serialNos {
		assertMoney(t, "50", f.serialCost(t, sn))
	}

	// History is preserved: originals stay, mirrored reversal rows appended.
	posted, err := f.postings.ListByVoucher(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, posted, 10)

	reversals := 0
	for _, p := range posted {
		if p.IsReversal {
			reversals++
		}
	}
	assert.Equal(t, 5, reversals)

	for _, p := range posted {
		if p.IsReversal && p.Account == "1410" {
			assertMoney(t, "275", p.Credit, "reversal mirrors the original debit")
			assert.True(t, p.Debit.IsZero())
		}
	}

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, stored.Status)
	assert.Len(t, stored.AllocatedItems, 2, "allocation stays as the audit record")

	err = f.svc.Cancel(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}

func TestCancel_Draft(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	doc := f.draftVoucher(t, "amount")

	err := f.svc.Cancel(context.Background(), doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}

func TestPreview_DoesNotMutate(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	ctx := context.Background()
	doc := f.draftVoucher(t, "amount")

	allocated, err := f.svc.Preview(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, allocated, 2)
	assertMoney(t, "25", allocated[0].AllocatedCharge)

	assertMoney(t, "250", f.stockValue(t, f.sourceA))
	assertMoney(t, "50", f.serialCost(t, "SN-001"))

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, stored.Status)
	assert.Empty(t, stored.AllocatedItems)
}

func TestUpdate_SubmittedIsImmutable(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	ctx := context.Background()
	doc := f.draftVoucher(t, "amount")

	_, err := f.svc.Submit(ctx, doc.ID)
	require.NoError(t, err)

	stored, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)

	stored.Comment = "late edit"
	err = f.svc.Update(ctx, stored)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))

	err = f.svc.Delete(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}

func TestDelete_Draft(t *testing.T) {
	f := newFixture(t, lcv.DefaultConfig())
	ctx := context.Background()
	doc := f.draftVoucher(t, "amount")

	require.NoError(t, f.svc.Delete(ctx, doc.ID))

	_, err := f.svc.GetByID(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
