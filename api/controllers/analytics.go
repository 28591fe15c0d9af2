package controllers

import (
	"net/http"
	"strings"

	"github.com/dinesync/backend/api/responses"
	"github.com/dinesync/backend/api/validators"
	internalanalytics "github.com/dinesync/backend/internal/analytics"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
	"github.com/dinesync/backend/pkg/logger"
)

const defaultAnalyticsPeriod = 7

// AnalyticsReport serves the dashboard metrics for the requested window.
func AnalyticsReport(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := validators.ParseQueryInt(r, "period", defaultAnalyticsPeriod, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("metric"))
		metric, ok := internalanalytics.ParseMetric(raw)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown metric").WithDetails(map[string]any{"metric": raw}))
			return
		}

		report, err := svc.Report(r.Context(), period, metric)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
