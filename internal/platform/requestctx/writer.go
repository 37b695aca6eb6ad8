// Package requestctx carries request-scoped identity through context.
package requestctx

import "context"

// writerContextKey is the context key for the verified writer subject.
type writerContextKey struct{}

// WithWriter stores the subject of a verified writer grant in context.
func WithWriter(ctx context.Context, subject string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, writerContextKey{}, subject)
}

// WriterFromContext returns the writer subject stored in context.
func WriterFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(writerContextKey{}).(string)
	return value
}
