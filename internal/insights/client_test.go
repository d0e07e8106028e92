package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

func TestClientAnalyzeSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.Insight{Analysis: "looks fine", RiskLevel: "low", Confidence: 0.9})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func() string { return "tok-1" }, logger.Nop())
	got := c.Analyze(context.Background(), &model.InsightRequest{Type: "market"})

	require.Equal(t, "looks fine", got.Analysis)
	require.Equal(t, "Bearer tok-1", gotAuth)
}

func TestClientAnalyzeFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func() string { return "" }, logger.Nop())
	got := c.Analyze(context.Background(), &model.InsightRequest{Type: "market"})

	require.Equal(t, Fallback(), got)
}

func TestClientAnalyzeFallsBackWhenUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", func() string { return "" }, logger.Nop())
	got := c.Analyze(context.Background(), &model.InsightRequest{Type: "portfolio"})

	require.Equal(t, Fallback(), got)
}

func TestClientAnalyzeFallsBackOnBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func() string { return "" }, logger.Nop())
	got := c.Analyze(context.Background(), &model.InsightRequest{Type: "market"})

	require.Equal(t, Fallback(), got)
}
