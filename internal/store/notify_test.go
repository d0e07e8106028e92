package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

func TestNotificationStoreShowAssignsIdAndPrepends(t *testing.T) {
	s := NewNotificationStore(logger.Nop(), time.Hour)
	defer s.Close()

	first := s.Show(model.Notification{Type: model.NotifyInfo, Title: "first"})
	second := s.Show(model.Notification{Type: model.NotifyInfo, Title: "second"})
	require.NotEmpty(t, first)
	require.NotEqual(t, first, second)

	active := s.Active()
	require.Len(t, active, 2)
	require.Equal(t, "second", active[0].Title, "newest notification comes first")
}

func TestNotificationStoreAutoDismiss(t *testing.T) {
	s := NewNotificationStore(logger.Nop(), time.Hour)
	defer s.Close()

	s.Show(model.Notification{Type: model.NotifySuccess, Title: "fleeting", AutoDismissMs: 30})
	s.Show(model.Notification{Type: model.NotifyError, Title: "sticky"})

	require.Eventually(t, func() bool {
		active := s.Active()
		return len(active) == 1 && active[0].Title == "sticky"
	}, time.Second, 10*time.Millisecond, "auto-dismiss timer must remove only its own notification")
}

func TestNotificationStoreDismissIsIdempotent(t *testing.T) {
	s := NewNotificationStore(logger.Nop(), time.Hour)
	defer s.Close()

	id := s.Show(model.Notification{Type: model.NotifyWarning, Title: "once"})
	s.Dismiss(id)
	s.Dismiss(id)
	s.Dismiss("no-such-id")

	require.Empty(t, s.Active())
}

func TestNotificationStoreDismissBeatsAutoDismiss(t *testing.T) {
	s := NewNotificationStore(logger.Nop(), time.Hour)
	defer s.Close()

	id := s.Show(model.Notification{Type: model.NotifyInfo, Title: "raced", AutoDismissMs: 40})
	s.Dismiss(id)
	require.Empty(t, s.Active())

	// The cancelled timer firing later must not disturb other entries.
	keep := s.Show(model.Notification{Type: model.NotifyInfo, Title: "keep"})
	time.Sleep(80 * time.Millisecond)
	active := s.Active()
	require.Len(t, active, 1)
	require.Equal(t, keep, active[0].ID)
}

func TestNotificationStoreSweepRemovesExpired(t *testing.T) {
	s := NewNotificationStore(logger.Nop(), 20*time.Millisecond)
	defer s.Close()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	s.Show(model.Notification{Type: model.NotifyInfo, Title: "expired", ExpiresAt: &past})
	s.Show(model.Notification{Type: model.NotifyInfo, Title: "fresh", ExpiresAt: &future})
	s.Show(model.Notification{Type: model.NotifyInfo, Title: "timeless"})

	require.Eventually(t, func() bool {
		active := s.Active()
		if len(active) != 2 {
			return false
		}
		for _, n := range active {
			if n.Title == "expired" {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestNotificationStoreCloseStopsEverything(t *testing.T) {
	s := NewNotificationStore(logger.Nop(), 20*time.Millisecond)
	s.Show(model.Notification{Type: model.NotifyInfo, Title: "gone on close", AutoDismissMs: 500})

	s.Close()
	s.Close() // idempotent

	require.Empty(t, s.Active())
}
