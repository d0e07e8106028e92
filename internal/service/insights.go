package service

import (
	"fmt"
	"strings"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// InsightService produces deterministic mock analysis. It stands in for
// the hosted AI edge function during local development.
type InsightService struct{}

func NewInsightService() *InsightService {
	return &InsightService{}
}

var insightTemplates = map[string]model.Insight{
	"portfolio": {
		Analysis: "Your portfolio is concentrated in large-cap assets. Diversification across mid-cap assets could reduce drawdown risk.",
		Suggestions: []string{
			"Consider rebalancing toward a 60/30/10 large/mid/small-cap split",
			"Set stop-loss orders on positions exceeding 20% of total value",
			"Review allocation monthly rather than reacting to daily moves",
		},
		RiskLevel:  "medium",
		Confidence: 0.78,
	},
	"market": {
		Analysis: "Market breadth is neutral with volume trending slightly below the 30-day average. No strong directional signal.",
		Suggestions: []string{
			"Watch BTC dominance for rotation signals",
			"Avoid over-leveraging in low-volume conditions",
		},
		RiskLevel:  "low",
		Confidence: 0.71,
	},
	"asset": {
		Analysis: "The asset shows elevated 24h volatility relative to its 90-day baseline. Short-term moves may not reflect fundamentals.",
		Suggestions: []string{
			"Use limit orders to avoid slippage",
			"Size the position below 5% of portfolio value",
		},
		RiskLevel:  "high",
		Confidence: 0.64,
	},
}

// Analyze returns a canned insight for the request type. Unknown types
// get a generic response rather than an error.
func (s *InsightService) Analyze(req *model.InsightRequest) *model.Insight {
	if tpl, ok := insightTemplates[strings.ToLower(req.Type)]; ok {
		out := tpl
		if len(req.Data) > 0 {
			out.Analysis = fmt.Sprintf("%s (based on %d bytes of context)", tpl.Analysis, len(req.Data))
		}
		return &out
	}

	return &model.Insight{
		Analysis:    "Not enough context to produce a detailed analysis.",
		Suggestions: []string{"Provide a portfolio, market or asset payload for a deeper read"},
		RiskLevel:   "unknown",
		Confidence:  0.5,
	}
}
