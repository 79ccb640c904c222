package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/simpos-backend/api/responses"
	"github.com/angelmondragon/simpos-backend/api/validators"
	"github.com/angelmondragon/simpos-backend/internal/audit"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
	"github.com/angelmondragon/simpos-backend/pkg/pagination"
)

// AuditList pages through the audit trail, newest first.
func AuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
