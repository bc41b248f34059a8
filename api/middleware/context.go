package middleware

import "context"

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxAdmin  contextKey = "admin_subject"
)

// UserIDFromContext returns the Telegram user identifier seeded by
// UserContext, or zero when the request carried none.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

// AdminSubjectFromContext returns the authenticated admin subject, if any.
func AdminSubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdmin).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}
