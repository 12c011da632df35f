package trackAdmin

import "context"

type requestIDContextKey struct{}

// WithRequestID pins the X-Request-Id sent for calls made with ctx. Without
// it every logical call gets a fresh UUID; a retry reuses its call's ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
