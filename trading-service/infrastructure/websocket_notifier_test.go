package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialNotifier(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{}
	header.Set(UserIDHeader, userID)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketNotifier_DeliversToOwner(t *testing.T) {
	notifier := NewWebSocketNotifier(nil)
	srv := httptest.NewServer(notifier)
	t.Cleanup(srv.Close)
	t.Cleanup(notifier.Close)

	owner := dialNotifier(t, srv, testUserID)
	require.Eventually(t, func() bool {
		return notifier.Connections(testUserID) == 1
	}, time.Second, 10*time.Millisecond)

	snapshot := acceptedPurchase().Snapshot()
	require.NoError(t, notifier.Notify(context.Background(), testUserID, snapshot))

	require.NoError(t, owner.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := owner.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Target    string                    `json:"target"`
		Arguments []events.PurchaseSnapshot `json:"arguments"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "ReceivePurchaseStatus", msg.Target)
	require.Len(t, msg.Arguments, 1)
	assert.Equal(t, "Accepted", msg.Arguments[0].CurrentState)
	assert.Equal(t, models.ID(testCorrelationID), msg.Arguments[0].CorrelationID)
}

func TestWebSocketNotifier_UnknownUserIsNoop(t *testing.T) {
	notifier := NewWebSocketNotifier(nil)
	err := notifier.Notify(context.Background(), testUserID, acceptedPurchase().Snapshot())
	assert.NoError(t, err)
}

func TestWebSocketNotifier_RejectsMissingUser(t *testing.T) {
	notifier := NewWebSocketNotifier(nil)

	rec := httptest.NewRecorder()
	notifier.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messagehub", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebSocketNotifier_UnregistersOnDisconnect(t *testing.T) {
	notifier := NewWebSocketNotifier(nil)
	srv := httptest.NewServer(notifier)
	t.Cleanup(srv.Close)

	conn := dialNotifier(t, srv, testUserID)
	require.Eventually(t, func() bool {
		return notifier.Connections(testUserID) == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		return notifier.Connections(testUserID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
