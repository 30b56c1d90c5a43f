package engine

import "context"

type metadataKey struct{}

func withMetadata(ctx context.Context, md Metadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, md)
}

// MetadataFromContext returns the transport metadata of the request being
// executed. Resolvers can use it to read headers or to observe transport
// cancellation signals; the engine itself never does.
func MetadataFromContext(ctx context.Context) (Metadata, bool) {
	md, ok := ctx.Value(metadataKey{}).(Metadata)
	return md, ok
}
