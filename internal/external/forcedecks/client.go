package forcedecks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/httputil"
	"github.com/athlab/vigil/pkg/logger"
)

// Client handles communication with the force-plate vendor's test
// export API. Vendor calls happen only through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	teamID     string
}

// NewClient creates a new vendor API client. The limiter keeps us
// under the vendor's per-minute request quota.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	perSecond := rate.Limit(float64(cfg.ForceDecks.RateLimit) / 60.0)
	return &Client{
		httpClient: httpClient,
		logger:     log,
		limiter:    rate.NewLimiter(perSecond, 1),
		baseURL:    cfg.ForceDecks.BaseURL,
		apiKey:     cfg.ForceDecks.APIKey,
		teamID:     cfg.ForceDecks.TeamID,
	}
}

// testPage is one page of the vendor's CMJ test export.
type testPage struct {
	Tests    []testRow `json:"tests"`
	NextPage int       `json:"next_page"`
}

// testRow is one CMJ test in the vendor payload.
type testRow struct {
	AthleteName            string  `json:"athlete_name"`
	Team                   string  `json:"team"`
	RecordedAt             string  `json:"recorded_at"`
	MRSI                   float64 `json:"mrsi"`
	JumpHeightM            float64 `json:"jump_height_m"`
	PropulsiveNetImpulseNs float64 `json:"propulsive_net_impulse_ns"`
}

// ListTests fetches all CMJ tests for the configured team in a date
// range, following pagination until exhausted.
func (c *Client) ListTests(ctx context.Context, from, to time.Time) ([]contracts.TestEvent, error) {
	var events []contracts.TestEvent

	page := 1
	for page > 0 {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		result, err := c.fetchPage(ctx, from, to, page)
		if err != nil {
			return nil, err
		}

		parsed, err := c.parseTests(result.Tests)
		if err != nil {
			return nil, err
		}
		events = append(events, parsed...)

		page = result.NextPage
	}

	c.logger.WithFields(map[string]interface{}{
		"team":  c.teamID,
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"tests": len(events),
	}).Info("Fetched vendor tests")

	return events, nil
}

// fetchPage fetches one page of the test export.
func (c *Client) fetchPage(ctx context.Context, from, to time.Time, page int) (*testPage, error) {
	params := url.Values{}
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("test_type", "CMJ")

	fullURL := fmt.Sprintf("%s/teams/%s/tests?%s", c.baseURL, url.PathEscape(c.teamID), params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Accept":        "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tests page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for page %d", resp.StatusCode, page)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var result testPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode tests page %d: %w", page, err)
	}

	return &result, nil
}

// parseTests converts vendor rows into test events. Rows with an
// unparseable date are skipped with a warning; missing metric values
// stay zero and are handled by the validator downstream.
func (c *Client) parseTests(rows []testRow) ([]contracts.TestEvent, error) {
	events := make([]contracts.TestEvent, 0, len(rows))

	for _, row := range rows {
		date, err := parseRecordedAt(row.RecordedAt)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"athlete": row.AthleteName,
				"raw":     row.RecordedAt,
			}).Warn("Skipping test with unparseable date")
			continue
		}

		events = append(events, contracts.TestEvent{
			PlayerName:             row.AthleteName,
			Team:                   row.Team,
			TestDate:               date,
			MRSI:                   row.MRSI,
			JumpHeightM:            row.JumpHeightM,
			PropulsiveNetImpulseNs: row.PropulsiveNetImpulseNs,
		})
	}

	return events, nil
}

func parseRecordedAt(raw string) (time.Time, error) {
	for _, format := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable recorded_at %q", raw)
}
