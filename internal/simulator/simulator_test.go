package simulator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/event"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

func TestGenerator_ProducesDecodableEvents(t *testing.T) {
	g := NewGenerator(Config{Seed: 42, AnomalyEvery: 5})

	kinds := make(map[event.Kind]int)
	for i := 0; i < 200; i++ {
		msg, err := g.NextMessage()
		require.NoError(t, err)

		ev, err := event.Decode(msg)
		require.NoError(t, err, "message %d: %s", i, msg)
		kinds[ev.Kind()]++

		if mu, ok := ev.(event.MetricsUpdate); ok && mu.Payload.Streaming != nil {
			mps := mu.Payload.Streaming.MessagesPerSecond
			assert.GreaterOrEqual(t, mps, entity.MinMessagesPerSecond)
			assert.LessOrEqual(t, mps, entity.MaxMessagesPerSecond)
		}
	}

	for _, k := range event.Kinds() {
		assert.Positive(t, kinds[k], "kind %s never generated", k)
	}
	assert.Equal(t, 40, kinds[event.KindAnomalyDetected])
}

func TestGenerator_Malformed(t *testing.T) {
	g := NewGenerator(Config{Seed: 1, MalformedEvery: 3})

	for i := 1; i <= 6; i++ {
		msg, err := g.NextMessage()
		require.NoError(t, err)

		_, decodeErr := event.Decode(msg)
		if i%3 == 0 {
			assert.ErrorIs(t, decodeErr, event.ErrMalformed)
		} else {
			assert.NoError(t, decodeErr)
		}
	}
}

func TestHandler_StreamsEvents(t *testing.T) {
	h := NewHandler(NewGenerator(Config{Seed: 7}), 10*time.Millisecond, logger.New("error"))
	server := httptest.NewServer(h.Routes())
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 3; i++ {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		_, err = event.Decode(msg)
		require.NoError(t, err)
	}

	resp, err := http.Get(server.URL + "/api/v1/simulator/summary")
	require.NoError(t, err)
	defer resp.Body.Close()

	var summary struct {
		Connections int64  `json:"connections"`
		Sent        uint64 `json:"sent"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, int64(1), summary.Connections)
	assert.GreaterOrEqual(t, summary.Sent, uint64(3))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SIMULATOR_INTERVAL", "250ms")
	t.Setenv("SIMULATOR_SEED", "99")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 30, cfg.AnomalyEvery)

	t.Setenv("SIMULATOR_INTERVAL", "1ms")
	_, err = LoadConfigFromEnv()
	assert.Error(t, err)
}
