package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/market"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

type fakeMarketGateway struct {
	assets    []model.CryptoAsset
	assetsErr error
	global    *model.GlobalMarket
	globalErr error
}

func (g *fakeMarketGateway) TopAssets(ctx context.Context, perPage, page int) ([]model.CryptoAsset, error) {
	return g.assets, g.assetsErr
}

func (g *fakeMarketGateway) Global(ctx context.Context) (*model.GlobalMarket, error) {
	return g.global, g.globalErr
}

func TestMarketStoreFetchSuccess(t *testing.T) {
	gw := &fakeMarketGateway{
		assets: []model.CryptoAsset{{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}},
		global: &model.GlobalMarket{},
	}
	s := NewMarketStore(gw, logger.Nop())

	s.Fetch(context.Background())

	require.False(t, s.Loading())
	require.Len(t, s.Assets(), 1)
	require.NotNil(t, s.Global())
	require.False(t, s.LastUpdated().IsZero())
}

func TestMarketStoreFallsBackToStaticListWhenEmpty(t *testing.T) {
	gw := &fakeMarketGateway{assetsErr: errors.New("rate limited"), globalErr: errors.New("rate limited")}
	s := NewMarketStore(gw, logger.Nop())

	s.Fetch(context.Background())

	require.False(t, s.Loading(), "a failed fetch still ends the loading state")
	require.Equal(t, market.FallbackAssets(), s.Assets())
	require.Nil(t, s.Global())
	require.True(t, s.LastUpdated().IsZero(), "fallback data is not a fresh update")
}

func TestMarketStoreKeepsSnapshotOverFallback(t *testing.T) {
	gw := &fakeMarketGateway{
		assets: []model.CryptoAsset{{ID: "bitcoin"}, {ID: "ethereum"}},
	}
	s := NewMarketStore(gw, logger.Nop())
	s.Fetch(context.Background())

	gw.assetsErr = errors.New("backend down")
	s.Fetch(context.Background())

	got := s.Assets()
	require.Len(t, got, 2, "an existing snapshot wins over the static fallback")
	require.Equal(t, "bitcoin", got[0].ID)
}

func TestMarketStoreFallbackAssetsContents(t *testing.T) {
	assets := market.FallbackAssets()
	require.Len(t, assets, 3)
	require.Equal(t, "Bitcoin", assets[0].Name)
	require.Equal(t, "Ethereum", assets[1].Name)
	require.Equal(t, "XRP", assets[2].Name)
	for i, a := range assets {
		require.Equal(t, i+1, a.MarketCapRank)
		require.Greater(t, a.CurrentPrice, 0.0)
	}
}
