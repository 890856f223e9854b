package sale

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/sale/dto"
)

type UseCase interface {
	// SaveSale creates or updates a sale and applies it. Malformed
	// reductions are rejected before anything is written.
	SaveSale(ctx context.Context, input *dto.SaveSaleInput) (*model.Sale, error)
	GetSale(ctx context.Context, id string) (*model.Sale, error)
	ListSales(ctx context.Context) ([]model.Sale, error)
	Deactivate(ctx context.Context, id string) (*model.Sale, error)
	DeleteSale(ctx context.Context, id string) error

	// Apply recomputes the sale's cached prices from its current state. It
	// is safe to repeat.
	Apply(ctx context.Context, id string) error
	// Remove clears the sale's cached prices without touching the sale.
	Remove(ctx context.Context, id string) error
}
