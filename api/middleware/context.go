package middleware

import "context"

type contextKey string

const ctxUserID contextKey = "user_id"

// UserIDFromContext returns the acting cashier id, or 0 when the request
// carried none.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}
