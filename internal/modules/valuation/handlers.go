package valuation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/domain"
	"github.com/meridianlane/loanvaluer/internal/modules/curves"
)

// Handler handles ad-hoc valuation HTTP requests
type Handler struct {
	service      *Service
	riskFreeRate float64
	log          zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(service *Service, riskFreeRate float64, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("handler", "valuation").Logger(),
	}
}

// ValueRequest is the body of an ad-hoc valuation call. The risk-free rate
// is optional; the configured default applies when it is omitted.
type ValueRequest struct {
	Loan         domain.Loan     `json:"loan"`
	Borrower     domain.Borrower `json:"borrower"`
	RiskFreeRate *float64        `json:"risk_free_rate"`
}

// HandleValue values a loan supplied in the request body without touching
// the portfolio store.
func (h *Handler) HandleValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	riskFree := h.riskFreeRate
	if req.RiskFreeRate != nil {
		riskFree = *req.RiskFreeRate
	}

	result, err := h.service.ValueLoan(&req.Loan, &req.Borrower, riskFree)
	if err != nil {
		if errors.Is(err, curves.ErrCurvesNotLoaded) {
			h.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.log.Error().Err(err).Str("loan_id", req.Loan.ID).Msg("Valuation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
