package serialcost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/receipts"
)

type fakeRepo struct {
	costs map[string]types.Money
}

func newFakeRepo(serialNos []string, cost string) *fakeRepo {
	costs := make(map[string]types.Money, len(serialNos))
	for _, sn := range serialNos {
		costs[sn] = types.MustMoney(cost)
	}
	return &fakeRepo{costs: costs}
}

func (f *fakeRepo) GetBySerialNo(_ context.Context, serialNo string) (entity.SerialCostRecord, error) {
	cost, ok := f.costs[serialNo]
	if !ok {
		return entity.SerialCostRecord{}, apperror.NewNotFound("serial", serialNo)
	}
	return entity.SerialCostRecord{SerialNo: serialNo, PurchaseCost: cost}, nil
}

func (f *fakeRepo) AddToPurchaseCost(_ context.Context, serialNo string, delta types.Money) error {
	cost, ok := f.costs[serialNo]
	if !ok {
		return apperror.NewNotFound("serial", serialNo)
	}
	f.costs[serialNo] = cost.Add(delta)
	return nil
}

func serializedRow(itemCode string, serialNos ...string) receipts.ItemRow {
	return receipts.ItemRow{
		ItemCode:   itemCode,
		Warehouse:  "WH-MAIN",
		Quantity:   types.NewQuantityFromFloat64(float64(len(serialNos))),
		Serialized: true,
		SerialNos:  serialNos,
	}
}

func TestSplitPerUnit(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		n      int
		want   []string
	}{
		{"even", "25", 5, []string{"5", "5", "5", "5", "5"}},
		{"residue to first", "50", 3, []string{"16.66", "16.67", "16.67"}},
		{"undershoot residue", "0.05", 3, []string{"0.01", "0.02", "0.02"}},
		{"single unit", "0.01", 1, []string{"0.01"}},
		{"no units", "10", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := SplitPerUnit(types.MustMoney(tt.amount), tt.n)
			require.Len(t, shares, tt.n)

			sum := types.Zero()
			for i, share := range shares {
				assert.True(t, share.Equal(types.MustMoney(tt.want[i])),
					"share %d: want %s, got %s", i, tt.want[i], share)
				sum = sum.Add(share)
			}
			if tt.n > 0 {
				assert.True(t, sum.Equal(types.MustMoney(tt.amount)))
			}
		})
	}
}

func TestValidateRow(t *testing.T) {
	row := serializedRow("ITEM-B", "SN-001", "SN-002")
	require.NoError(t, ValidateRow(row))

	row.Quantity = types.NewQuantityFromFloat64(3)
	err := ValidateRow(row)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSerialCountMismatch))

	plain := receipts.ItemRow{ItemCode: "ITEM-A", Quantity: types.NewQuantityFromFloat64(7)}
	assert.NoError(t, ValidateRow(plain))
}

func TestApplyCharge(t *testing.T) {
	repo := newFakeRepo([]string{"SN-001", "SN-002", "SN-003"}, "50")
	svc := NewService(repo)
	row := serializedRow("ITEM-B", "SN-001", "SN-002", "SN-003")

	require.NoError(t, svc.ApplyCharge(context.Background(), row, types.MustMoney("50")))

	assert.True(t, repo.costs["SN-001"].Equal(types.MustMoney("66.66")))
	assert.True(t, repo.costs["SN-002"].Equal(types.MustMoney("66.67")))
	assert.True(t, repo.costs["SN-003"].Equal(types.MustMoney("66.67")))
}

func TestApplyCharge_CountMismatch(t *testing.T) {
	repo := newFakeRepo([]string{"SN-001"}, "50")
	svc := NewService(repo)

	row := serializedRow("ITEM-B", "SN-001")
	row.Quantity = types.NewQuantityFromFloat64(2)

	err := svc.ApplyCharge(context.Background(), row, types.MustMoney("10"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSerialCountMismatch))
	assert.True(t, repo.costs["SN-001"].Equal(types.MustMoney("50")), "no unit may change on a rejected row")
}

func TestReverseCharge_RestoresCosts(t *testing.T) {
	repo := newFakeRepo([]string{"SN-001", "SN-002", "SN-003"}, "50")
	svc := NewService(repo)
	row := serializedRow("ITEM-B", "SN-001", "SN-002", "SN-003")
	charge := types.MustMoney("50")

	require.NoError(t, svc.ApplyCharge(context.Background(), row, charge))
	require.NoError(t, svc.ReverseCharge(context.Background(), row, charge))

	for _, sn := range row.SerialNos {
		assert.True(t, repo.costs[sn].Equal(types.MustMoney("50")), "serial %s", sn)
	}
}
