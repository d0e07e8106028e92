package model

// CryptoAsset is one row of the top-assets-by-market-cap listing.
type CryptoAsset struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Image            string  `json:"image,omitempty"`
	CurrentPrice     float64 `json:"current_price"`
	MarketCap        float64 `json:"market_cap"`
	MarketCapRank    int     `json:"market_cap_rank"`
	TotalVolume      float64 `json:"total_volume"`
	PriceChange24h   float64 `json:"price_change_24h"`
	PriceChangePct24 float64 `json:"price_change_percentage_24h"`
}

// GlobalMarket is the aggregate market snapshot.
type GlobalMarket struct {
	TotalMarketCapUSD float64            `json:"total_market_cap_usd"`
	TotalVolumeUSD    float64            `json:"total_volume_usd"`
	MarketCapChange24 float64            `json:"market_cap_change_percentage_24h"`
	Dominance         map[string]float64 `json:"dominance"`
	ActiveCoins       int                `json:"active_cryptocurrencies"`
}
