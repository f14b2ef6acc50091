package http

import (
	"errors"
	"net/http"

	"spendlens/internal/analytics"
	"spendlens/internal/log"
)

// msgAnalyticsFailed is all a caller learns about engine failures.
const msgAnalyticsFailed = "could not load analytics"

// handleAnalytics serves GET /api/analytics?type=...
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	t, params, err := ParseAnalyticsQuery(r.URL.Query())
	if err != nil {
		logger.Debug("Rejected analytics request", log.FieldQuery, r.URL.RawQuery, log.FieldError, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := s.user(r)
	report, err := s.analytics.Report(ctx, user, t, params)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidParameter) || errors.Is(err, analytics.ErrUnknownReport) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Analytics report failed",
			log.FieldUserID, user,
			log.FieldReportType, t.String(),
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgAnalyticsFailed)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
