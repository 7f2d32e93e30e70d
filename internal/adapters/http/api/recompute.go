package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/elorank/internal/app"
	"github.com/okian/elorank/internal/domain/rating"
)

// RecomputeDependencies defines the interface for on-demand runs.
type RecomputeDependencies interface {
	Recompute(ctx context.Context) (service.RunStats, error)
}

// RecomputeHandler handles recompute requests.
type RecomputeHandler struct {
	deps RecomputeDependencies
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies) *RecomputeHandler {
	return &RecomputeHandler{deps: deps}
}

// HandleRecompute handles POST /recompute. The run is synchronous; the
// response carries its stats. An invalid match log is reported as 422.
func (h *RecomputeHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.recompute"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	stats, err := h.deps.Recompute(r.Context())
	switch {
	case errors.Is(err, rating.ErrInvalidRecord):
		writeError(w, http.StatusUnprocessableEntity, "invalid_record", WrapKind(op, ErrRecompute, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "recompute_failed", WrapKind(op, ErrRecompute, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
