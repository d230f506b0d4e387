package http

import (
	"net/http"
	"strconv"

	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

type ResultsHandler struct {
	results   ports.ResultsService
	analytics ports.AnalyticsService
}

func NewResultsHandler(results ports.ResultsService, analytics ports.AnalyticsService) *ResultsHandler {
	return &ResultsHandler{
		results:   results,
		analytics: analytics,
	}
}

// SessionResults reveals a closed session. ?all=true lists every votee
// instead of the top three.
func (h *ResultsHandler) SessionResults(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	results, err := h.results.Results(r.Context(), sessionID, all)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *ResultsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analytics.Analytics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

func (h *ResultsHandler) Values(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.CompanyValues)
}
