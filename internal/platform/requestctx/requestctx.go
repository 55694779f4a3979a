// Package requestctx carries per-request correlation data through
// context.Context so handlers and the error envelope can echo it back.
package requestctx

import "context"

// The key is an unexported struct type so no other package can collide
// with it, even one storing a string under the same name.
type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the correlation id set by the request-id
// middleware, or the empty string outside a request scope.
func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}
