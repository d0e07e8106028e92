package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Websitedemo13/s17-trading-go/internal/backend"
	"github.com/Websitedemo13/s17-trading-go/internal/config"
	"github.com/Websitedemo13/s17-trading-go/internal/insights"
	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/market"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
	"github.com/Websitedemo13/s17-trading-go/internal/store"
)

// Headless client daemon. Restores the persisted session, polls market
// data, subscribes to every joined team's event channel and logs the
// traffic. Useful for exercising the stores against a running backend.
func main() {
	cfg := config.Load()
	log := logger.New("client")
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The gateway needs a token source before the session store exists,
	// so it reads through a late-bound pointer.
	var session *store.SessionStore
	tokenFn := func() string {
		if session == nil {
			return ""
		}
		return session.AccessToken()
	}

	api := backend.NewClient(cfg.BackendURL, tokenFn)
	session = store.NewSessionStore(api, cfg.StateDir, log)

	prefs := store.NewPrefStore(cfg.StateDir, log)
	chat := store.NewChatStore(api, log)
	teams := store.NewTeamStore(api, session, log)
	notify := store.NewNotificationStore(log, store.DefaultSweepInterval)
	defer notify.Close()

	markets := store.NewMarketStore(market.NewClient(cfg.MarketAPIURL), log)
	analyst := insights.NewClient(cfg.BackendURL+"/api/v1/insights", tokenFn, log)

	rt := backend.NewRealtime(cfg.RealtimeURL, tokenFn, log)
	bridge := store.NewBridge(store.NewRealtimeDialer(rt), chat, log)
	session.OnReset(chat.Reset)
	session.OnReset(bridge.CloseAll)
	defer bridge.CloseAll()

	session.Restore(ctx)
	log.Infow("session restored",
		"authenticated", session.Authenticated(),
		"language", prefs.Prefs().Language,
	)

	markets.StartPolling(ctx, cfg.MarketPoll)

	if session.Authenticated() {
		if profile, err := api.Profile(ctx); err == nil {
			log.Infow("signed in", "display_name", profile.DisplayName, "email", profile.Email)
		}

		// Replay notifications that arrived while the daemon was down.
		if pending, err := api.Notifications(ctx, 20); err == nil {
			for _, n := range pending {
				if n.Read {
					continue
				}
				notify.Show(model.Notification{
					Type:        n.Type,
					Title:       n.Title,
					Message:     n.Message,
					Dismissible: true,
				})
				if err := api.MarkNotificationRead(ctx, n.ID); err != nil {
					log.Debugw("mark read failed", "id", n.ID, "error", err)
				}
			}
		}

		teams.FetchTeams(ctx)
		for _, team := range teams.Teams() {
			chat.LoadHistory(ctx, team.ID, 50)
			if _, err := bridge.Subscribe(team.ID); err != nil {
				log.Warnw("cannot subscribe to team", "team_id", team.ID, "error", err)
				continue
			}
			log.Infow("subscribed", "team_id", team.ID, "name", team.Name)
		}

		insight := analyst.Analyze(ctx, &model.InsightRequest{Type: "market"})
		notify.Show(model.Notification{
			Type:          model.NotifyInfo,
			Title:         "Market insight",
			Message:       insight.Analysis,
			Dismissible:   true,
			AutoDismissMs: 10_000,
		})
	} else {
		log.Infow("running anonymous, market data only")
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Infow("shutting down")
			return
		case <-ticker.C:
			log.Infow("status",
				"assets", len(markets.Assets()),
				"teams", len(teams.Teams()),
				"notifications", len(notify.Active()),
				"market_updated", markets.LastUpdated().Format(time.RFC3339),
			)
		}
	}
}
