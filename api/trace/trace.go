package trace

import (
	"context"

	"github.com/google/uuid"
)

// unexported so that other packages cannot collide with the key.
type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// GenerateID returns a new random request id.
func GenerateID() string {
	return uuid.NewString()
}

// WithRequestID returns a copy of ctx carrying requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}
