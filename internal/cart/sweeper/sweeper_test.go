package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/cart"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/stretchr/testify/assert"
)

// expiringCarts implements only ExpireStale; other calls panic.
type expiringCarts struct {
	cart.UseCase
	calls chan struct{}
	err   error
}

func (c *expiringCarts) ExpireStale(context.Context) (int64, error) {
	c.calls <- struct{}{}
	return 1, c.err
}

func TestStart_SweepsUntilCancelled(t *testing.T) {
	for _, sweepErr := range []error{nil, errors.New("db down")} {
		carts := &expiringCarts{calls: make(chan struct{}, 10), err: sweepErr}
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			NewCartSweeper(carts, 5*time.Millisecond, logger.NewNop()).Start(ctx)
			close(done)
		}()

		for i := 0; i < 2; i++ {
			select {
			case <-carts.calls:
			case <-time.After(time.Second):
				t.Fatal("sweeper did not run")
			}
		}
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop")
		}
		assert.Error(t, ctx.Err())
	}
}
