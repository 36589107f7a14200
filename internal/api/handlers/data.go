package handlers

import (
	"net/http"
	"time"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/quality"
	"github.com/athlab/vigil/pkg/logger"
	"github.com/athlab/vigil/pkg/redis"
)

// DataHandler serves data-quality reports over the stored test events.
type DataHandler struct {
	events    contracts.EventRepository
	validator *quality.Validator
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(events contracts.EventRepository, validator *quality.Validator, cache *redis.Cache, log *logger.Logger) *DataHandler {
	return &DataHandler{
		events:    events,
		validator: validator,
		cache:     cache,
		logger:    log,
	}
}

// GetCoverage returns a coverage snapshot of the stored events.
// GET /api/data/coverage
func (h *DataHandler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var snapshot contracts.CoverageSnapshot
	err := h.cache.GetOrSet(ctx, "data:coverage", &snapshot, 10*time.Minute, func() (interface{}, error) {
		events, err := h.events.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		return h.validator.Coverage(events), nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute coverage")
		respondError(w, http.StatusInternalServerError, "Failed to compute coverage")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}
