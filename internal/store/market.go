package store

import (
	"context"
	"sync"
	"time"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/market"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// MarketGateway is the slice of the market-data API the store needs.
type MarketGateway interface {
	TopAssets(ctx context.Context, perPage, page int) ([]model.CryptoAsset, error)
	Global(ctx context.Context) (*model.GlobalMarket, error)
}

// MarketStore holds the latest market snapshot. Fetches never fail
// loudly: on error the store falls back to the last snapshot, or to the
// documented static asset list when there is none. Overlapping fetches
// resolve last-write-wins.
type MarketStore struct {
	mu  sync.Mutex
	gw  MarketGateway
	log *logger.Logger

	assets      []model.CryptoAsset
	global      *model.GlobalMarket
	loading     bool
	lastUpdated time.Time
	perPage     int
}

func NewMarketStore(gw MarketGateway, log *logger.Logger) *MarketStore {
	return &MarketStore{gw: gw, log: log, perPage: 50}
}

// Fetch refreshes the asset list and the global snapshot. It never
// returns an error; the fallback policy is part of its contract.
func (s *MarketStore) Fetch(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	assets, assetsErr := s.gw.TopAssets(ctx, s.perPage, 1)
	global, globalErr := s.gw.Global(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if assetsErr != nil {
		s.log.Warnw("asset fetch failed", "error", assetsErr)
		if len(s.assets) == 0 {
			s.assets = market.FallbackAssets()
		}
	} else {
		s.assets = assets
		s.lastUpdated = time.Now()
	}

	if globalErr != nil {
		s.log.Warnw("global snapshot fetch failed", "error", globalErr)
	} else {
		s.global = global
	}
}

// StartPolling fetches immediately and then on every tick until the
// context is cancelled.
func (s *MarketStore) StartPolling(ctx context.Context, interval time.Duration) {
	go func() {
		s.Fetch(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Fetch(ctx)
			}
		}
	}()
}

func (s *MarketStore) Assets() []model.CryptoAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CryptoAsset, len(s.assets))
	copy(out, s.assets)
	return out
}

func (s *MarketStore) Global() *model.GlobalMarket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.global == nil {
		return nil
	}
	g := *s.global
	return &g
}

func (s *MarketStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *MarketStore) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}
