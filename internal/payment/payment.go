// Package payment defines the capability that authorizes a charge.
package payment

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const Step = "payment"

type CardDetails struct {
	Name        string
	Type        string
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CCV         string
}

// Authorizer charges amount and returns the gateway transaction id. A
// declined charge is reported as an *apperr.CheckoutError.
type Authorizer interface {
	Authorize(ctx context.Context, amount decimal.Decimal, card CardDetails, billing model.Address) (string, error)
}

// Declined builds the error gateways return for a refused charge.
func Declined(reason string) error {
	return &apperr.CheckoutError{Step: Step, Reason: reason}
}

type dummyAuthorizer struct{}

// NewDummyAuthorizer approves every charge. It stands in until a gateway is
// configured.
func NewDummyAuthorizer() Authorizer {
	return dummyAuthorizer{}
}

func (dummyAuthorizer) Authorize(_ context.Context, amount decimal.Decimal, _ CardDetails, _ model.Address) (string, error) {
	if amount.IsNegative() {
		return "", Declined("amount must not be negative")
	}
	return uuid.New().String(), nil
}
