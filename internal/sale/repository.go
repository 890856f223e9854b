package sale

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
)

// Assignment holds the sale prices computed for one sale, keyed by product
// and variation id.
type Assignment struct {
	Products   map[string]decimal.Decimal
	Variations map[string]decimal.Decimal
}

func (a Assignment) Size() int {
	return len(a.Products) + len(a.Variations)
}

type Repository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id string) (*model.Sale, error)
	FindAll(ctx context.Context) ([]model.Sale, error)
	Update(ctx context.Context, sale *model.Sale) error
	Delete(ctx context.Context, id string) error

	// ReplaceAssignments clears the sale from every row still referencing it,
	// then caches the assigned prices with the sale's window. It returns the
	// ids of every product touched.
	ReplaceAssignments(ctx context.Context, sale *model.Sale, assignment Assignment) ([]string, error)
	// ClearAssignments only clears rows whose sale_id is saleID.
	ClearAssignments(ctx context.Context, saleID string) ([]string, error)
}
