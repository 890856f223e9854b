package payment

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyAuthorizer(t *testing.T) {
	a := NewDummyAuthorizer()
	ctx := context.Background()

	first, err := a.Authorize(ctx, decimal.NewFromInt(27), CardDetails{}, model.Address{})
	require.NoError(t, err)
	second, err := a.Authorize(ctx, decimal.Zero, CardDetails{}, model.Address{})
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	_, err = a.Authorize(ctx, decimal.NewFromInt(-1), CardDetails{}, model.Address{})
	require.Error(t, err)
	assert.True(t, apperr.IsCheckout(err))
}
