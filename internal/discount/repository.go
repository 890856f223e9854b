package discount

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type Repository interface {
	Create(ctx context.Context, code *model.DiscountCode) error
	FindByID(ctx context.Context, id string) (*model.DiscountCode, error)
	FindByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	FindAll(ctx context.Context) ([]model.DiscountCode, error)
	Update(ctx context.Context, code *model.DiscountCode) error
	Delete(ctx context.Context, id string) error

	// DecrementUses takes one use off an active code with limited uses left.
	// Codes without a limit, or with none left, are unchanged.
	DecrementUses(ctx context.Context, code string) error
}
