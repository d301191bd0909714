package shared

import "context"

type userIDContextKey struct{}

// ContextWithUserID stores the authenticated user id in context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext extracts the authenticated user id. An anonymous request yields ok=false.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(userIDContextKey{}).(string)
	return id, id != ""
}
