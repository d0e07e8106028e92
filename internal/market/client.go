package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// Client reads the public market-data API. Both endpoints are read-only
// and polled; failures are expected and handled by the caller's
// fallback policy.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// TopAssets returns one page of the top assets by market capitalization.
func (c *Client) TopAssets(ctx context.Context, perPage, page int) ([]model.CryptoAsset, error) {
	if perPage <= 0 || perPage > 250 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("sparkline", "false")

	var assets []model.CryptoAsset
	if err := c.getJSON(ctx, c.baseURL+"/coins/markets?"+q.Encode(), &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Global returns the aggregate market snapshot.
func (c *Client) Global(ctx context.Context) (*model.GlobalMarket, error) {
	var payload struct {
		Data struct {
			TotalMarketCap     map[string]float64 `json:"total_market_cap"`
			TotalVolume        map[string]float64 `json:"total_volume"`
			MarketCapPct       map[string]float64 `json:"market_cap_percentage"`
			MarketCapChange24h float64            `json:"market_cap_change_percentage_24h_usd"`
			ActiveCoins        int                `json:"active_cryptocurrencies"`
		} `json:"data"`
	}

	if err := c.getJSON(ctx, c.baseURL+"/global", &payload); err != nil {
		return nil, err
	}

	return &model.GlobalMarket{
		TotalMarketCapUSD: payload.Data.TotalMarketCap["usd"],
		TotalVolumeUSD:    payload.Data.TotalVolume["usd"],
		MarketCapChange24: payload.Data.MarketCapChange24h,
		Dominance:         payload.Data.MarketCapPct,
		ActiveCoins:       payload.Data.ActiveCoins,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market api: unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
