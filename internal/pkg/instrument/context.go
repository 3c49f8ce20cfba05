package instrument

import "context"

type correlationIDKey struct{}

// SetCorrelationID stores the request correlation ID on the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cid)
}

// GetCorrelationID returns the correlation ID stored on the context, or "".
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey{}).(string)
	return cid
}
