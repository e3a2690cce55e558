package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"landedcost/internal/core/numerator"
)

// Numerator is an in-memory document number generator. Sequences do not
// survive a restart, so it is only suitable for development and tests.
type Numerator struct {
	mu   sync.Mutex
	seqs map[string]int64
}

var _ numerator.Generator = (*Numerator)(nil)

// NewNumerator creates a new in-memory numerator.
func NewNumerator() *Numerator {
	return &Numerator{seqs: make(map[string]int64)}
}

// GetNextNumber generates the next document number.
func (n *Numerator) GetNextNumber(_ context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := sequenceKey(cfg, period)
	n.seqs[key]++

	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, n.seqs[key]), nil
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, n.seqs[key]), nil
}

// SetNextNumber sets the next number value.
func (n *Numerator) SetNextNumber(_ context.Context, cfg numerator.Config, period time.Time, value int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seqs[sequenceKey(cfg, period)] = value
	return nil
}

func sequenceKey(cfg numerator.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}
