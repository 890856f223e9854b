package cart

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/session"
)

type UseCase interface {
	// FromSession returns the session's live cart, or an empty unsaved cart.
	FromSession(ctx context.Context, sess session.Store) (*model.Cart, error)
	// AddItem adds quantity of variation, persisting an empty cart first.
	// The returned cart replaces the one passed in.
	AddItem(ctx context.Context, sess session.Store, cart *model.Cart, variation *model.Variation, quantity int) (*model.Cart, error)
	UpdateQuantity(ctx context.Context, cart *model.Cart, itemID string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, cart *model.Cart, itemID string) (*model.Cart, error)
	UpsellProducts(ctx context.Context, cart *model.Cart) ([]model.Product, error)
	Delete(ctx context.Context, sess session.Store, cart *model.Cart) error
	ExpireStale(ctx context.Context) (int64, error)
}
