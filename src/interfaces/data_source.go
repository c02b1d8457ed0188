package interfaces

import (
	"context"

	"tariff-observer/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource loads one configured source and normalizes it.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// SourceConfig returns the source declaration it was built from.
	SourceConfig() models.MSourceConfig

	// -----------------------------------------------------------------------------

	// Load fetches the raw table (through the cache when one is set) and
	// normalizes it. fromCache reports whether the bytes came from the cache.
	Load(ctx context.Context) (result models.MNormalizeResult, fromCache bool, err error)
}
