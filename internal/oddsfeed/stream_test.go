package oddsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// streamTestServer upgrades connections and replays frames after a subscribe
func streamTestServer(t *testing.T, frames []string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var sub subscribeMessage
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}

		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamClientDeliversQuotes(t *testing.T) {
	gameID := uuid.New()
	frames := []string{
		`{"op": "heartbeat", "heartbeat": true}`,
		`{"op": "quote", "game_id": "` + gameID.String() + `", "quote": {
			"timestamp": "2024-01-15T12:00:00Z", "sportsbook": "alpha",
			"home_moneyline": "-145", "away_moneyline": "125"}}`,
	}
	srv := streamTestServer(t, frames)
	defer srv.Close()

	client := NewStreamClient(wsURL(srv), "test-key", testFeedLogger())

	received := make(chan *models.OddsQuote, 1)
	client.AddHandler(func(q *models.OddsQuote) error {
		received <- q
		return nil
	})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()
	require.NoError(t, client.Subscribe([]uuid.UUID{gameID}))

	select {
	case quote := <-received:
		assert.Equal(t, gameID, quote.GameID)
		require.True(t, quote.HasMoneyline())
		assert.InDelta(t, -145, *quote.HomeMoneyline, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("no quote received from stream")
	}

	assert.True(t, client.IsConnected())
}

func TestStreamClientSkipsMalformedFrames(t *testing.T) {
	gameID := uuid.New()
	frames := []string{
		`{"op": "quote", "game_id": "not-a-uuid", "quote": {"timestamp": "2024-01-15T12:00:00Z"}}`,
		`{"op": "quote", "game_id": "` + gameID.String() + `", "quote": {
			"timestamp": "2024-01-15T12:00:00Z", "home_moneyline": "bogus"}}`,
		`{"op": "quote", "game_id": "` + gameID.String() + `", "quote": {
			"timestamp": "2024-01-15T12:01:00Z", "home_moneyline": "-110", "away_moneyline": "-110"}}`,
	}
	srv := streamTestServer(t, frames)
	defer srv.Close()

	client := NewStreamClient(wsURL(srv), "", testFeedLogger())

	received := make(chan *models.OddsQuote, 3)
	client.AddHandler(func(q *models.OddsQuote) error {
		received <- q
		return nil
	})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()
	require.NoError(t, client.Subscribe([]uuid.UUID{gameID}))

	select {
	case quote := <-received:
		// Only the well-formed frame survives.
		assert.True(t, quote.HasMoneyline())
		assert.Equal(t, gameID, quote.GameID)
	case <-time.After(2 * time.Second):
		t.Fatal("no quote received from stream")
	}
	assert.Empty(t, received)
}

func TestStreamClientRejectsDoubleConnect(t *testing.T) {
	srv := streamTestServer(t, nil)
	defer srv.Close()

	client := NewStreamClient(wsURL(srv), "", testFeedLogger())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	err := client.Connect(context.Background())
	assert.Error(t, err)
}
