package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// Client calls the AI-insights edge function. The endpoint is best
// effort: any failure yields the canned fallback payload, never an
// error, so insight rendering can never block the UI.
type Client struct {
	endpoint string
	token    func() string
	http     *http.Client
	log      *logger.Logger
}

// NewClient takes the full endpoint URL and a token source for the
// Authorization header. token may return "" for anonymous calls.
func NewClient(endpoint string, token func() string, log *logger.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      log,
	}
}

// Analyze requests an analysis for the payload. It always returns a
// usable insight.
func (c *Client) Analyze(ctx context.Context, req *model.InsightRequest) *model.Insight {
	body, err := json.Marshal(req)
	if err != nil {
		return Fallback()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Fallback()
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t := c.token(); t != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warnw("insights call failed, using fallback", "error", err)
		return Fallback()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("insights call failed, using fallback", "status", resp.StatusCode)
		return Fallback()
	}

	var insight model.Insight
	if err := json.NewDecoder(resp.Body).Decode(&insight); err != nil {
		c.log.Warnw("bad insights payload, using fallback", "error", err)
		return Fallback()
	}
	return &insight
}

// Fallback is the canned payload used whenever the endpoint is
// unreachable or returns something unusable.
func Fallback() *model.Insight {
	return &model.Insight{
		Analysis: "AI analysis is temporarily unavailable. Showing general guidance instead.",
		Suggestions: []string{
			"Diversify holdings across uncorrelated assets",
			"Never invest more than you can afford to lose",
			"Prefer dollar-cost averaging over lump-sum timing",
		},
		RiskLevel:  "unknown",
		Confidence: 0,
	}
}
