package model

import "encoding/json"

type InsightRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Insight struct {
	Analysis    string   `json:"analysis"`
	Suggestions []string `json:"suggestions"`
	RiskLevel   string   `json:"risk_level"`
	Confidence  float64  `json:"confidence"`
}
