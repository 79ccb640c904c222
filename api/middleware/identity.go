package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/simpos-backend/api/responses"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
)

// UserIDHeader carries the cashier id resolved by the upstream session layer.
const UserIDHeader = "X-User-Id"

// Identity seeds the request context with the cashier id from UserIDHeader.
// Requests without the header pass through anonymously; malformed values are
// rejected.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid user identity"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that reached it without a cashier id.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
