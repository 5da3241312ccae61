package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
)

func dialHub(t *testing.T, hub *Hub, userID string, streams []string, allowed map[string]struct{}) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(userID, streams, allowed, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestBroadcastToUserDeliversMessage(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user-1", []string{StreamNotifications}, nil)

	// Subscription is registered synchronously during Serve, but Serve runs
	// on the server goroutine, so give it a moment to settle.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subscriptions[StreamNotifications]["user-1"]) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToUser(StreamNotifications, "user-1", Message{
		Event: "notification.created",
		Data:  map[string]any{"title": "Booking confirmed"},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, StreamNotifications, msg.Stream)
	require.Equal(t, "notification.created", msg.Event)
}

func TestBroadcastToOtherUserNotDelivered(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user-1", []string{StreamBookings}, nil)

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subscriptions[StreamBookings]["user-1"]) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToUser(StreamBookings, "user-2", Message{Event: "booking.updated"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var msg Message
	err := conn.ReadJSON(&msg)
	require.Error(t, err)
}

func TestUnauthorizedStreamIgnored(t *testing.T) {
	hub := NewHub()

	allowed := map[string]struct{}{StreamNotifications: {}}
	dialHub(t, hub, "user-1", []string{StreamFinance, StreamNotifications}, allowed)

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subscriptions[StreamNotifications]["user-1"]) == 1
	}, time.Second, 10*time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	require.Empty(t, hub.subscriptions[StreamFinance])
}

func TestEmptyAllowedSetPermitsNothing(t *testing.T) {
	hub := NewHub()

	ghost := permissions.NewChecker(permissions.Role("ghost"), "user-1")
	allowed := AllowedStreams(ghost)
	require.Empty(t, allowed)

	conn := dialHub(t, hub, "user-1", []string{StreamFinance}, allowed)

	hub.BroadcastToUser(StreamFinance, "user-1", Message{Event: "invoice.created"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var msg Message
	require.Error(t, conn.ReadJSON(&msg))

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	require.Empty(t, hub.subscriptions[StreamFinance])
}

func TestAllowedStreamsFollowRoleGrants(t *testing.T) {
	customer := permissions.NewChecker(permissions.RoleCustomer, "user-1")
	allowed := AllowedStreams(customer)
	require.Contains(t, allowed, StreamNotifications)
	require.Contains(t, allowed, StreamBookings)
	require.Contains(t, allowed, StreamFinance)
	require.NotContains(t, allowed, StreamProperties)

	admin := permissions.NewChecker(permissions.RoleAdmin, "admin-1")
	require.Len(t, AllowedStreams(admin), len(streamGates))

	require.Empty(t, AllowedStreams(nil))
}
