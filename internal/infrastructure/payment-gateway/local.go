package paymentgateway

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/lumakart/fulfillment-service/internal/domain"
)

// LocalProvider fabricates instrument references without calling out.
// Used in tests and local runs; confirmation is then driven through the
// webhook endpoint or directly through the coordinator.
type LocalProvider struct {
	clock clockwork.Clock
}

func CreateLocalProvider(clock clockwork.Clock) Provider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LocalProvider{clock: clock}
}

func (p *LocalProvider) Charge(orderID string, method string, amount float64) (ChargeResult, error) {
	window := domain.PaymentWindow(method)
	if window == 0 {
		return ChargeResult{}, fmt.Errorf("unsupported payment method: %s", method)
	}

	ref := fmt.Sprintf("local/%s/%s", method, uuid.NewString())

	return ChargeResult{
		Reference: ref,
		ExpiredAt: p.clock.Now().Add(window).Unix(),
	}, nil
}
