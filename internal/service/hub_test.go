package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(logger.Nop())
	go h.Run()
	t.Cleanup(h.Shutdown)
	return h
}

func newTestClient(userID, teamID string) *HubClient {
	c := &HubClient{
		UserID:      userID,
		DisplayName: userID,
		Send:        make(chan []byte, 16),
	}
	c.SetTeam(teamID)
	return c
}

func register(t *testing.T, h *Hub, c *HubClient) {
	t.Helper()
	h.Register(c)
	require.Eventually(t, func() bool { return h.OnlineCount() > 0 }, time.Second, time.Millisecond)
}

func TestHubBroadcastFiltersByTeam(t *testing.T) {
	h := newTestHub(t)

	alice := newTestClient("alice", "t1")
	bob := newTestClient("bob", "t2")
	h.Register(alice)
	h.Register(bob)
	require.Eventually(t, func() bool { return h.OnlineCount() == 2 }, time.Second, time.Millisecond)

	h.BroadcastToTeam("t1", &model.Event{Type: model.EventNewMessage, TeamID: "t1"}, "")

	select {
	case data := <-alice.Send:
		var ev model.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		require.Equal(t, "t1", ev.TeamID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}

	select {
	case <-bob.Send:
		t.Fatal("event leaked to another team's subscriber")
	default:
	}
}

func TestHubBroadcastExcludesOriginator(t *testing.T) {
	h := newTestHub(t)

	alice := newTestClient("alice", "t1")
	register(t, h, alice)

	h.BroadcastToTeam("t1", &model.Event{Type: model.EventTyping, TeamID: "t1"}, "alice")

	select {
	case <-alice.Send:
		t.Fatal("typing event echoed back to its sender")
	default:
	}
}

// A connection's read loop may switch its team subscription while other
// goroutines are broadcasting. Run under the race detector this fails if
// the subscription field is not properly guarded.
func TestHubSubscriptionSwitchDuringBroadcast(t *testing.T) {
	h := newTestHub(t)

	client := newTestClient("alice", "t1")
	register(t, h, client)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		teams := [2]string{"t1", "t2"}
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				client.SetTeam(teams[i%2])
			}
		}
	}()

	go func() {
		defer wg.Done()
		ev := &model.Event{Type: model.EventNewMessage, TeamID: "t1"}
		for {
			select {
			case <-done:
				return
			default:
				h.BroadcastToTeam("t1", ev, "")
			}
		}
	}()

	// Drain so the broadcaster never parks on a full buffer.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case <-done:
				return
			case <-client.Send:
			}
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()
	<-drained

	require.Contains(t, []string{"t1", "t2"}, client.Team())
}

func TestHubSetTeamReturnsPrevious(t *testing.T) {
	c := newTestClient("alice", "")
	require.Equal(t, "", c.SetTeam("t1"))
	require.Equal(t, "t1", c.SetTeam("t2"))
	require.Equal(t, "t2", c.Team())
}
