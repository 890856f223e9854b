package order

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order/dto"
)

type Repository interface {
	// CreateWithItems stores the order and all of its items, or nothing.
	CreateWithItems(ctx context.Context, order *model.Order) error
	// FindByID loads the order with its items.
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	UpdateTransaction(ctx context.Context, id, transactionID string) error
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
	// Delete removes the order and its items.
	Delete(ctx context.Context, id string) error
}
