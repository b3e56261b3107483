package cache

import "context"

// ResolutionCache is the short-code -> destination URL cache consumed by
// the redirect resolver. Implementations must never surface backend
// errors to callers: a broken cache degrades to a miss on Get and a
// no-op on Set/Invalidate, so the hot path stays correct by falling
// through to the durable store.
type ResolutionCache interface {
	// Get returns the cached destination URL for a short code.
	// ok is false on a miss or any backend failure.
	Get(ctx context.Context, shortCode string) (destinationURL string, ok bool)

	// Set stores the destination URL under the configured TTL.
	Set(ctx context.Context, shortCode, destinationURL string)

	// Invalidate evicts the entry for a short code.
	Invalidate(ctx context.Context, shortCode string)
}
