package curves

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles reference-data HTTP requests
type Handler struct {
	provider *Provider
	log      zerolog.Logger
}

// NewHandler creates a new reference-data handler
func NewHandler(provider *Provider, log zerolog.Logger) *Handler {
	return &Handler{
		provider: provider,
		log:      log.With().Str("handler", "reference").Logger(),
	}
}

// HandleGetCurves returns the active curve snapshot
func (h *Handler) HandleGetCurves(w http.ResponseWriter, r *http.Request) {
	curveSet, schoolTable, err := h.provider.Snapshot()
	if err != nil {
		if errors.Is(err, ErrCurvesNotLoaded) {
			h.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tiers":       curveSet.Tiers,
		"adjustments": curveSet.Adjustments,
		"schools":     schoolTable.Len(),
	})
}

// HandleReload refreshes the curve and school-tier snapshot from the
// reference database
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.Reload(); err != nil {
		h.log.Error().Err(err).Msg("Reference reload failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "reloaded",
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
