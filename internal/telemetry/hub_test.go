package telemetry

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pulseguard/internal/domain"
)

func dialTestHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", n)
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	defer hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialTestHub(t, server)
	defer conn.Close()

	waitForClients(t, hub, 1)

	snap := NewSnapshot(12345,
		domain.VitalsSnapshot{HR: 72.5, HRVRMSSD: 41, Quality: 90, BeatCount: 6},
		domain.StrainFeatures{StrainIndex: 0.25, BaselineReady: true},
		domain.StatusRelaxed,
	)
	hub.Broadcast(snap)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, int64(12345), got.TimeMs)
	assert.InDelta(t, 72.5, got.HR, 0.0001)
	assert.Equal(t, 6, got.BeatCount)
	assert.True(t, got.BaselineReady)
	assert.Equal(t, "relaxed", got.Status)
}

func TestHub_ClientCountTracksDisconnect(t *testing.T) {
	var lastCount atomic.Int64
	hub := NewHub(zap.NewNop(), func(n int) { lastCount.Store(int64(n)) })
	defer hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialTestHub(t, server)
	waitForClients(t, hub, 1)
	assert.Equal(t, int64(1), lastCount.Load())

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastNoClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	defer hub.Close()

	// Must not panic or block
	hub.Broadcast(Snapshot{TimeMs: 1})
	assert.Equal(t, 0, hub.ClientCount())
}
