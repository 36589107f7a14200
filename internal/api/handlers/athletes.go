package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/athlab/vigil/internal/baseline"
	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/pkg/logger"
	"github.com/athlab/vigil/pkg/redis"
)

// AthleteHandler serves per-athlete baselines and flag history.
type AthleteHandler struct {
	events   contracts.EventRepository
	flagRuns contracts.FlagRepository
	calc     *baseline.Calculator
	cache    *redis.Cache
	logger   *logger.Logger
}

// NewAthleteHandler creates a new athlete handler.
func NewAthleteHandler(
	events contracts.EventRepository,
	flagRuns contracts.FlagRepository,
	calc *baseline.Calculator,
	cache *redis.Cache,
	log *logger.Logger,
) *AthleteHandler {
	return &AthleteHandler{
		events:   events,
		flagRuns: flagRuns,
		calc:     calc,
		cache:    cache,
		logger:   log,
	}
}

// BaselineResponse pairs an athlete's median baselines with the team
// average over the same window.
type BaselineResponse struct {
	Baseline contracts.AthleteBaseline `json:"baseline"`
	Team     *contracts.TeamBaseline   `json:"team,omitempty"`
}

// GetBaseline returns the athlete's median baselines as of a date,
// with the team average for context.
// GET /api/athletes/{name}/baseline?date=YYYY-MM-DD
// Without ?date= the baseline covers all history up to now.
func (h *AthleteHandler) GetBaseline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	asOf := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		// End of day so tests on the requested date count as history.
		asOf = parsed.AddDate(0, 0, 1)
	}

	cacheKey := fmt.Sprintf("baseline:%s:%s", name, asOf.Format("2006-01-02"))

	var resp BaselineResponse
	found, err := h.cache.Get(ctx, cacheKey, &resp)
	if err != nil {
		h.logger.WithError(err).WithField("player", name).Error("Failed to read baseline cache")
		respondError(w, http.StatusInternalServerError, "Failed to compute baseline")
		return
	}

	if !found {
		computed, err := h.computeBaseline(ctx, name, asOf)
		if err != nil {
			h.logger.WithError(err).WithField("player", name).Error("Failed to compute baseline")
			respondError(w, http.StatusInternalServerError, "Failed to compute baseline")
			return
		}

		// Never cache an empty result; it would hide a first import
		// behind the TTL.
		if computed.Baseline.History > 0 {
			if err := h.cache.Set(ctx, cacheKey, computed, 10*time.Minute); err != nil {
				h.logger.WithError(err).Warn("Failed to cache baseline")
			}
		}
		resp = *computed
	}

	if resp.Baseline.History == 0 {
		respondError(w, http.StatusNotFound, "No test history for athlete")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// computeBaseline builds the athlete medians and, when the athlete's
// team is known, the team average over the same window.
func (h *AthleteHandler) computeBaseline(ctx context.Context, name string, asOf time.Time) (*BaselineResponse, error) {
	history, err := h.events.GetAthleteHistoryBefore(ctx, name, asOf)
	if err != nil {
		return nil, err
	}

	resp := &BaselineResponse{
		Baseline: *h.calc.ForAthlete(history, name, asOf),
	}

	if len(history) > 0 {
		team := history[len(history)-1].Team
		if team != "" {
			window, err := h.events.GetTeamWindowBefore(ctx, team, asOf)
			if err != nil {
				return nil, err
			}
			resp.Team = h.calc.ForTeam(window, team, asOf)
		}
	}

	return resp, nil
}

// GetFlags returns all flagged records for an athlete across runs.
// GET /api/athletes/{name}/flags
func (h *AthleteHandler) GetFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	records, err := h.flagRuns.GetRecordsByAthlete(ctx, name)
	if err != nil {
		h.logger.WithError(err).WithField("player", name).Error("Failed to get athlete flags")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve athlete flags")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_name": name,
		"count":       len(records),
		"records":     records,
	})
}
