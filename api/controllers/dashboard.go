package controllers

import (
	"net/http"

	"github.com/brightmill/storefront-insights/api/responses"
	"github.com/brightmill/storefront-insights/api/validators"
	"github.com/brightmill/storefront-insights/internal/dashboard"
	"github.com/brightmill/storefront-insights/pkg/logger"
)

// DashboardQuery decodes one query request, runs it through the facade, and
// writes the summary payload.
func DashboardQuery(runner dashboard.Runner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req validators.DashboardQueryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		query, err := req.ToQuery()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := runner.Run(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
