package memory

import (
	"context"
	"sync"
	"time"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/registers/serialcost"
)

// SerialCostRepository is an in-memory serial cost register.
type SerialCostRepository struct {
	mu      sync.RWMutex
	records map[string]entity.SerialCostRecord
}

// NewSerialCostRepository creates the repository.
func NewSerialCostRepository() *SerialCostRepository {
	return &SerialCostRepository{records: make(map[string]entity.SerialCostRecord)}
}

// Put seeds a serial record.
func (r *SerialCostRepository) Put(record entity.SerialCostRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.SerialNo] = record
}

func (r *SerialCostRepository) GetBySerialNo(_ context.Context, serialNo string) (entity.SerialCostRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[serialNo]
	if !ok {
		return entity.SerialCostRecord{}, apperror.NewNotFound("serial", serialNo)
	}
	return record, nil
}

func (r *SerialCostRepository) AddToPurchaseCost(_ context.Context, serialNo string, delta types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[serialNo]
	if !ok {
		return apperror.NewNotFound("serial", serialNo)
	}

	record.PurchaseCost = record.PurchaseCost.Add(delta)
	record.UpdatedAt = time.Now().UTC()
	r.records[serialNo] = record
	return nil
}

var _ serialcost.Repository = (*SerialCostRepository)(nil)
