package market

import "github.com/Websitedemo13/s17-trading-go/internal/model"

// FallbackAssets is the documented default shown when the market API is
// unreachable and no earlier snapshot exists. The figures are sample
// data, not live prices.
func FallbackAssets() []model.CryptoAsset {
	return []model.CryptoAsset{
		{
			ID:               "bitcoin",
			Symbol:           "btc",
			Name:             "Bitcoin",
			CurrentPrice:     43250.50,
			MarketCap:        847_000_000_000,
			MarketCapRank:    1,
			TotalVolume:      28_500_000_000,
			PriceChange24h:   1034.20,
			PriceChangePct24: 2.45,
		},
		{
			ID:               "ethereum",
			Symbol:           "eth",
			Name:             "Ethereum",
			CurrentPrice:     2280.75,
			MarketCap:        274_000_000_000,
			MarketCapRank:    2,
			TotalVolume:      15_200_000_000,
			PriceChange24h:   -29.10,
			PriceChangePct24: -1.26,
		},
		{
			ID:               "ripple",
			Symbol:           "xrp",
			Name:             "XRP",
			CurrentPrice:     0.6215,
			MarketCap:        33_600_000_000,
			MarketCapRank:    3,
			TotalVolume:      1_900_000_000,
			PriceChange24h:   0.0142,
			PriceChangePct24: 2.34,
		},
	}
}
