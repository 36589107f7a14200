package handlers

import (
	"net/http"
	"time"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/pkg/logger"
	"github.com/athlab/vigil/pkg/redis"
)

// FlagsHandler serves flag run reports.
type FlagsHandler struct {
	flagRuns contracts.FlagRepository
	cache    *redis.Cache
	logger   *logger.Logger
}

// NewFlagsHandler creates a new flags handler.
func NewFlagsHandler(flagRuns contracts.FlagRepository, cache *redis.Cache, log *logger.Logger) *FlagsHandler {
	return &FlagsHandler{
		flagRuns: flagRuns,
		cache:    cache,
		logger:   log,
	}
}

// GetLatest returns the most recent flag run.
// GET /api/flags/latest
func (h *FlagsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var run contracts.FlagRun
	found, err := h.cache.Get(ctx, "flags:latest", &run)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read flag run cache")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest flag run")
		return
	}

	if !found {
		latest, err := h.flagRuns.GetLatestRun(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to get latest flag run")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve latest flag run")
			return
		}

		// Never cache the absence of a run; the first recorded run must
		// become visible immediately.
		if latest == nil {
			respondError(w, http.StatusNotFound, "No flag runs recorded yet")
			return
		}

		if err := h.cache.Set(ctx, "flags:latest", latest, 5*time.Minute); err != nil {
			h.logger.WithError(err).Warn("Failed to cache latest flag run")
		}
		run = *latest
	}

	respondJSON(w, http.StatusOK, run)
}

// GetByDate returns the flag run for a given date.
// GET /api/flags?date=YYYY-MM-DD
func (h *FlagsHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		respondError(w, http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	run, err := h.flagRuns.GetRunByDate(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get flag run by date")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve flag run")
		return
	}

	if run == nil {
		respondError(w, http.StatusNotFound, "No flag run for that date")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
