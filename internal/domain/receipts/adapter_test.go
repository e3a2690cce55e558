package receipts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/itemmaster"
	"landedcost/internal/domain/receipts"
	"landedcost/internal/infrastructure/memory"
)

func TestResolve_ReceiptNote(t *testing.T) {
	sourceID := id.New()

	sources := memory.NewSourceStore()
	sources.Put(receipts.SourceDoc{
		Kind:                    entity.SourceReceiptNote,
		SourceID:                sourceID,
		LiabilityAccount:        "2150",
		ValuationExpenseAccount: "5215",
		Lines: []receipts.SourceLine{
			{
				ItemCode:  "ITEM-B",
				Warehouse: "WH-MAIN",
				Quantity:  types.NewQuantityFromFloat64(5),
				Amount:    types.MustMoney("250"),
				SerialNos: []string{"SN-001", "SN-002", "SN-003", "SN-004", "SN-005"},
			},
		},
	})

	items := memory.NewItemRepository()
	items.Put(itemmaster.ItemProfile{
		ItemCode:         "ITEM-B",
		Class:            itemmaster.ClassStock,
		ValuationAccount: "1420",
		Serialized:       true,
	})

	adapter := receipts.NewAdapter(sources, items)
	rows, err := adapter.Resolve(context.Background(), receipts.Reference{
		Kind:     entity.SourceReceiptNote,
		SourceID: sourceID,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "ITEM-B", row.ItemCode)
	assert.Equal(t, "1420", row.ValuationAccount)
	assert.Equal(t, "5215", row.ValuationExpenseAccount)
	assert.Equal(t, "2150", row.LiabilityAccount)
	assert.Equal(t, receipts.LiabilityProvisional, row.LiabilityKind)
	assert.True(t, row.Serialized)
	assert.Len(t, row.SerialNos, 5)
}

func TestResolve_SupplierInvoiceOwesPayable(t *testing.T) {
	sourceID := id.New()

	sources := memory.NewSourceStore()
	sources.Put(receipts.SourceDoc{
		Kind:             entity.SourceSupplierInvoice,
		SourceID:         sourceID,
		LiabilityAccount: "2100",
		Lines: []receipts.SourceLine{
			{
				ItemCode:  "ITEM-A",
				Warehouse: "WH-MAIN",
				Quantity:  types.NewQuantityFromFloat64(2),
				Amount:    types.MustMoney("250"),
			},
		},
	})

	items := memory.NewItemRepository()
	items.Put(itemmaster.ItemProfile{ItemCode: "ITEM-A", Class: itemmaster.ClassStock, ValuationAccount: "1410"})

	adapter := receipts.NewAdapter(sources, items)
	rows, err := adapter.Resolve(context.Background(), receipts.Reference{
		Kind:     entity.SourceSupplierInvoice,
		SourceID: sourceID,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, receipts.LiabilityPayable, rows[0].LiabilityKind)
	assert.Equal(t, "2100", rows[0].LiabilityAccount)
}

func TestResolve_UnsupportedKind(t *testing.T) {
	adapter := receipts.NewAdapter(memory.NewSourceStore(), memory.NewItemRepository())

	_, err := adapter.Resolve(context.Background(), receipts.Reference{
		Kind:     entity.SourceLandedCostVoucher,
		SourceID: id.New(),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnsupportedSourceKind))
}

func TestResolve_UnknownSource(t *testing.T) {
	adapter := receipts.NewAdapter(memory.NewSourceStore(), memory.NewItemRepository())

	_, err := adapter.Resolve(context.Background(), receipts.Reference{
		Kind:     entity.SourceReceiptNote,
		SourceID: id.New(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
