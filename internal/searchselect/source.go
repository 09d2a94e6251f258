package searchselect

import "context"

// Source performs one search. Implementations must be safe to call from a
// goroutine other than the Bubble Tea event loop.
type Source[T Item] interface {
	Search(ctx context.Context, query string) (Results[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T Item] func(ctx context.Context, query string) (Results[T], error)

// Search calls f.
func (f SourceFunc[T]) Search(ctx context.Context, query string) (Results[T], error) {
	return f(ctx, query)
}
