package logctx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const keyRID ctxKey = "rid"

// WithRID stores the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// RIDOrNew returns the stored correlation id, or a fresh one when the
// context carries none (background jobs, tests).
func RIDOrNew(ctx context.Context) string {
	if rid := RID(ctx); rid != "" {
		return rid
	}
	return uuid.NewString()
}
