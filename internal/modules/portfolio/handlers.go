package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/modules/curves"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *Service, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleListLoans returns every loan in the portfolio
func (h *Handler) HandleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.repo.GetAllLoans()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list loans")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(loans),
		"loans": loans,
	})
}

// HandleGetLoan returns one loan with its events and lots
func (h *Handler) HandleGetLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	loan, err := h.repo.GetLoan(id)
	if err != nil {
		h.log.Error().Err(err).Str("loan_id", id).Msg("Failed to get loan")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if loan == nil {
		h.writeError(w, http.StatusNotFound, "Loan not found")
		return
	}

	h.writeJSON(w, http.StatusOK, loan)
}

// HandleValueLoan revalues one loan and persists the result
func (h *Handler) HandleValueLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.service.ValueLoan(id)
	if err != nil {
		if errors.Is(err, curves.ErrCurvesNotLoaded) {
			h.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("loan_id", id).Msg("Valuation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleRevalueAll runs a full portfolio revaluation
func (h *Handler) HandleRevalueAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ValueAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Portfolio revaluation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// HandleLatestValuations returns the most recent valuation per loan
func (h *Handler) HandleLatestValuations(w http.ResponseWriter, r *http.Request) {
	results, err := h.repo.GetLatestValuations()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list valuations")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(results),
		"valuations": results,
	})
}

// HandleValuationHistory returns the valuation history for one loan
func (h *Handler) HandleValuationHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	results, err := h.repo.GetValuationHistory(id)
	if err != nil {
		h.log.Error().Err(err).Str("loan_id", id).Msg("Failed to get valuation history")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"loan_id":    id,
		"count":      len(results),
		"valuations": results,
	})
}

// HandleSetOverride stores an analyst override for a loan's borrower
func (h *Handler) HandleSetOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var override BorrowerOverride
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	override.LoanID = id

	if err := h.service.SetOverride(&override); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("loan_id", id).Msg("Failed to set override")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"loan_id": id,
	})
}

// HandleClearOverride removes the override for a loan
func (h *Handler) HandleClearOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.ClearOverride(id); err != nil {
		h.log.Error().Err(err).Str("loan_id", id).Msg("Failed to clear override")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"loan_id": id,
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
