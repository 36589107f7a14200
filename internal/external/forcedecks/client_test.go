package forcedecks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/httputil"
	"github.com/athlab/vigil/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		ForceDecks: config.ForceDecksConfig{
			BaseURL:   baseURL,
			APIKey:    "test-key",
			TeamID:    "WBB",
			RateLimit: 600,
		},
	}
	log := logger.New(cfg)
	return NewClient(cfg, httputil.New(log).DisableRetry(), log)
}

func TestListTestsPaginated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "CMJ", r.URL.Query().Get("test_type"))

		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")

		switch page {
		case "1":
			fmt.Fprint(w, `{
				"tests": [
					{"athlete_name": "kim_a", "team": "WBB", "recorded_at": "2025-11-01",
					 "mrsi": 0.50, "jump_height_m": 0.40, "propulsive_net_impulse_ns": 180.5}
				],
				"next_page": 2
			}`)
		case "2":
			fmt.Fprint(w, `{
				"tests": [
					{"athlete_name": "lee_b", "team": "WBB", "recorded_at": "2025-11-02T08:30:00Z",
					 "mrsi": 0.55, "jump_height_m": 0.42, "propulsive_net_impulse_ns": 195}
				],
				"next_page": 0
			}`)
		default:
			t.Errorf("unexpected page %q", page)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	events, err := client.ListTests(context.Background(),
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "kim_a", events[0].PlayerName)
	assert.InDelta(t, 180.5, events[0].PropulsiveNetImpulseNs, 1e-9)
	assert.Equal(t, "lee_b", events[1].PlayerName)
	assert.Equal(t, 2025, events[1].TestDate.Year())
}

func TestListTestsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.ListTests(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestParseTestsSkipsBadDates(t *testing.T) {
	client := newTestClient("http://unused")

	rows := []testRow{
		{AthleteName: "kim_a", Team: "WBB", RecordedAt: "2025-11-01", MRSI: 0.5},
		{AthleteName: "lee_b", Team: "WBB", RecordedAt: "soon", MRSI: 0.6},
	}

	events, err := client.parseTests(rows)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "kim_a", events[0].PlayerName)
}

func TestTestRowDecoding(t *testing.T) {
	raw := `{"athlete_name":"kim_a","team":"WBB","recorded_at":"2025-11-01","mrsi":0.5,"jump_height_m":0.4,"propulsive_net_impulse_ns":180.5}`

	var row testRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))
	assert.Equal(t, "kim_a", row.AthleteName)
	assert.InDelta(t, 0.4, row.JumpHeightM, 1e-9)
}
