// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"landedcost/internal/core/apperror"
	"landedcost/internal/domain/itemmaster"
	"landedcost/internal/infrastructure/storage/postgres"
)

const itemsTable = "cat_items"

// ItemRepo implements itemmaster.Repository.
type ItemRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetProfile retrieves the accounting profile of one item.
func (r *ItemRepo) GetProfile(ctx context.Context, itemCode string) (itemmaster.ItemProfile, error) {
	var profile itemmaster.ItemProfile

	q := r.builder.Select(
		"item_code", "class", "valuation_account", "serialized",
	).From(itemsTable).
		Where(squirrel.Eq{"item_code": itemCode}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return profile, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &profile, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return profile, apperror.NewNotFound("item", itemCode)
		}
		return profile, fmt.Errorf("get item profile: %w", err)
	}

	return profile, nil
}

// Ensure interface compliance.
var _ itemmaster.Repository = (*ItemRepo)(nil)
