package interfaces

import "context"

// -----------------------------------------------------------------------------
// IFetchCache stores raw source bytes per refresh bucket, so repeated
// builds inside one bucket do not hit the network again.
// -----------------------------------------------------------------------------

type IFetchCache interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema or checks connectivity.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Get returns the cached bytes of location for bucket.
	Get(ctx context.Context, location string, bucket int64) ([]byte, bool, error)

	// -----------------------------------------------------------------------------

	// Put stores the bytes of location for bucket.
	Put(ctx context.Context, location string, bucket int64, data []byte) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes entries from buckets older than oldest.
	CleanupOldData(ctx context.Context, oldest int64) error

	// -----------------------------------------------------------------------------

	// Close the cache connection
	Close() error
}
