// Package register_repo provides PostgreSQL implementations for register
// repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/registers/stockledger"
	"landedcost/internal/infrastructure/storage/postgres"
)

const stockLedgerTable = "reg_stock_ledger"

var stockLedgerColumns = []string{
	"line_id", "item_code", "warehouse",
	"recorder_kind", "recorder_id",
	"period", "sequence",
	"qty_change", "qty_after", "stock_value",
	"created_at",
}

// StockLedgerRepo implements stockledger.Repository.
type StockLedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockLedgerRepo creates a new stock ledger repository.
func NewStockLedgerRepo(txManager *postgres.TxManager) *StockLedgerRepo {
	return &StockLedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetEntryByRecorder finds the chain row the source receipt created for the
// given (item, warehouse). Returns nil when the receipt never touched that
// chain.
func (r *StockLedgerRepo) GetEntryByRecorder(ctx context.Context, itemCode, warehouse string, recorderID id.ID) (*entity.StockLedgerEntry, error) {
	q := r.builder.Select(stockLedgerColumns...).
		From(stockLedgerTable).
		Where(squirrel.Eq{
			"item_code":   itemCode,
			"warehouse":   warehouse,
			"recorder_id": recorderID,
		}).
		OrderBy("period", "sequence").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entry entity.StockLedgerEntry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry by recorder: %w", err)
	}

	return &entry, nil
}

// ListFrom returns the entry at (period, sequence) and every later entry of
// the (item, warehouse) chain.
func (r *StockLedgerRepo) ListFrom(ctx context.Context, itemCode, warehouse string, period time.Time, sequence int64) ([]entity.StockLedgerEntry, error) {
	q := r.builder.Select(stockLedgerColumns...).
		From(stockLedgerTable).
		Where(squirrel.Eq{
			"item_code": itemCode,
			"warehouse": warehouse,
		}).
		Where(squirrel.Or{
			squirrel.Gt{"period": period},
			squirrel.And{
				squirrel.Eq{"period": period},
				squirrel.GtOrEq{"sequence": sequence},
			},
		}).
		OrderBy("period", "sequence")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.StockLedgerEntry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list chain: %w", err)
	}

	return entries, nil
}

// ShiftStockValue adds delta to the stock value of the given rows. Quantity
// columns are never part of this statement.
func (r *StockLedgerRepo) ShiftStockValue(ctx context.Context, lineIDs []id.ID, delta types.Money) error {
	if len(lineIDs) == 0 {
		return nil
	}

	q := r.builder.Update(stockLedgerTable).
		Set("stock_value", squirrel.Expr("stock_value + ?", delta)).
		Where(squirrel.Eq{"line_id": lineIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("shift stock value: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ stockledger.Repository = (*StockLedgerRepo)(nil)
