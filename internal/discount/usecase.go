package discount

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/discount/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidCode is returned for any code that does not apply to the cart.
// The shopper is not told which check failed.
var ErrInvalidCode error = &apperr.ValidationError{Field: "discount_code", Message: "the discount code entered is invalid"}

type UseCase interface {
	// SaveCode creates a code when input.ID is empty, otherwise updates it.
	SaveCode(ctx context.Context, input *dto.SaveCodeInput) (*model.DiscountCode, error)
	GetCode(ctx context.Context, code string) (*model.DiscountCode, error)
	ListCodes(ctx context.Context) ([]model.DiscountCode, error)
	DeleteCode(ctx context.Context, id string) error

	Validate(ctx context.Context, code string, cart *model.Cart) (*model.DiscountCode, error)
	CalculateDiscount(ctx context.Context, code *model.DiscountCode, cart *model.Cart) (decimal.Decimal, error)
	// Redeem uses up one application of code after an order completes.
	Redeem(ctx context.Context, code string) error
}
