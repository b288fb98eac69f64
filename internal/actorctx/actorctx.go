package actorctx

import "context"

type ctxKey string

const keyUserID ctxKey = "user_id"

// WithUserID stores the authenticated user id on a request context so
// code below the HTTP layer can log who acted.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyUserID).(string)

	return v, ok && v != ""
}
