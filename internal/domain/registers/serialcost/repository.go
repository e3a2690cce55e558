// Package serialcost provides the per-unit cost register for serialized stock.
package serialcost

import (
	"context"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/types"
)

// Repository defines operations on serial cost records.
type Repository interface {
	// GetBySerialNo retrieves one serial record.
	GetBySerialNo(ctx context.Context, serialNo string) (entity.SerialCostRecord, error)

	// AddToPurchaseCost increments a unit's purchase cost by delta.
	// The record's warehouse is never written by this engine.
	AddToPurchaseCost(ctx context.Context, serialNo string, delta types.Money) error
}
