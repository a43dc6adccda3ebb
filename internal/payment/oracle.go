package payment

import (
	"context"
	"time"

	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
)

// SettlementOracle answers whether a PROCESSING payment should be treated
// as settled. The aging rule below stands in for a real gateway callback;
// swapping in one does not touch the state machine.
type SettlementOracle interface {
	Settled(ctx context.Context, p *paymentmodel.Payment) (bool, error)
}

// AgingOracle declares a payment settled once it has been PROCESSING for
// longer than the threshold.
type AgingOracle struct {
	Threshold time.Duration
	Now       func() time.Time
}

func NewAgingOracle(threshold time.Duration) *AgingOracle {
	return &AgingOracle{
		Threshold: threshold,
		Now:       time.Now,
	}
}

func (o *AgingOracle) Settled(_ context.Context, p *paymentmodel.Payment) (bool, error) {
	if p.Status != StatusProcessing {
		return false, nil
	}
	return o.Now().Sub(p.CreatedAt) > o.Threshold, nil
}
