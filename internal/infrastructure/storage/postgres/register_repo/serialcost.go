package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/registers/serialcost"
	"landedcost/internal/infrastructure/storage/postgres"
)

const serialCostTable = "reg_serial_costs"

// SerialCostRepo implements serialcost.Repository.
type SerialCostRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSerialCostRepo creates a new serial cost repository.
func NewSerialCostRepo(txManager *postgres.TxManager) *SerialCostRepo {
	return &SerialCostRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetBySerialNo retrieves one serial record.
func (r *SerialCostRepo) GetBySerialNo(ctx context.Context, serialNo string) (entity.SerialCostRecord, error) {
	var record entity.SerialCostRecord

	q := r.builder.Select(
		"serial_no", "item_code", "warehouse", "purchase_cost", "updated_at",
	).From(serialCostTable).
		Where(squirrel.Eq{"serial_no": serialNo}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return record, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &record, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return record, apperror.NewNotFound("serial", serialNo)
		}
		return record, fmt.Errorf("get serial: %w", err)
	}

	return record, nil
}

// AddToPurchaseCost increments a unit's purchase cost by delta.
func (r *SerialCostRepo) AddToPurchaseCost(ctx context.Context, serialNo string, delta types.Money) error {
	q := r.builder.Update(serialCostTable).
		Set("purchase_cost", squirrel.Expr("purchase_cost + ?", delta)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"serial_no": serialNo})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update serial cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("serial", serialNo)
	}

	return nil
}

// Ensure interface compliance.
var _ serialcost.Repository = (*SerialCostRepo)(nil)
