package stockcache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/agrocalc/internal/domain/dose"
)

// Store keeps stock levels for a bounded time.
type Store interface {
	Get(ctx context.Context, productID string) (dose.StockLevel, bool, error)
	Set(ctx context.Context, level dose.StockLevel, ttl time.Duration) error
}

// CachedProvider serves stock levels from a Store and falls back to the
// inventory backend on a miss.
type CachedProvider struct {
	next   dose.StockProvider
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProvider decorates next with a read-through cache.
func NewCachedProvider(next dose.StockProvider, store Store, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "stockcache"),
	}
}

// StockLevel implements dose.StockProvider.
func (p *CachedProvider) StockLevel(ctx context.Context, productID string) (dose.StockLevel, error) {
	productID = strings.TrimSpace(productID)
	level, ok, err := p.store.Get(ctx, productID)
	if err != nil {
		p.logger.Warn("stock cache read failed", "product_id", productID, "error", err)
	} else if ok {
		return level, nil
	}

	level, err = p.next.StockLevel(ctx, productID)
	if err != nil {
		return dose.StockLevel{}, err
	}
	if err := p.store.Set(ctx, level, p.ttl); err != nil {
		p.logger.Warn("stock cache write failed", "product_id", productID, "error", err)
	}
	return level, nil
}

var _ dose.StockProvider = (*CachedProvider)(nil)
