package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refracalc/internal/config"
	"refracalc/pkg/contracts/events"
)

func TestHandler_UpgradeAndBroadcast(t *testing.T) {
	hub := newTestHub(t)
	srv := httptest.NewServer(NewHandler(hub, config.WebSocketConfig{}, nil, testLogger()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var welcome events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, events.MessageTypeConnect, welcome.Type)

	hub.Publish(context.Background(), events.WebSocketMessage{
		Type:   events.MessageTypeCalibrationUpdated,
		Action: events.ActionPointDeleted,
		Data:   events.CalibrationUpdated{Kind: "single-point"},
	})

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type   string                    `json:"type"`
		Action string                    `json:"action"`
		Data   events.CalibrationUpdated `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, string(events.MessageTypeCalibrationUpdated), msg.Type)
	assert.Equal(t, events.ActionPointDeleted, msg.Action)
	assert.Equal(t, "single-point", msg.Data.Kind)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	hub := newTestHub(t)
	srv := httptest.NewServer(NewHandler(hub, config.WebSocketConfig{}, []string{"http://allowed.example"}, testLogger()))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"http://allowed.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		host    string
		want    bool
	}{
		{"no origin header", nil, "", "localhost:8080", true},
		{"same host", nil, "http://localhost:8080", "localhost:8080", true},
		{"foreign host", nil, "http://other:8080", "localhost:8080", false},
		{"wildcard", []string{"*"}, "http://other:8080", "localhost:8080", true},
		{"listed", []string{"http://other:8080"}, "http://other:8080", "localhost:8080", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checkOrigin(tt.allowed)(r))
		})
	}
}
