package sweeper

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/cart"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"go.uber.org/zap"
)

// CartSweeper periodically deletes carts past their expiry so their holds
// stop counting against live stock.
type CartSweeper struct {
	uc       cart.UseCase
	interval time.Duration
	logger   logger.ZapLogger
}

func NewCartSweeper(uc cart.UseCase, interval time.Duration, logger logger.ZapLogger) *CartSweeper {
	return &CartSweeper{
		uc:       uc,
		interval: interval,
		logger:   logger,
	}
}

func (s *CartSweeper) Start(ctx context.Context) {
	s.logger.Info("Starting cart sweeper", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping cart sweeper")
			return
		case <-ticker.C:
			if _, err := s.uc.ExpireStale(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("Failed to expire carts", zap.Error(err))
			}
		}
	}
}
