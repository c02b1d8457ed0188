package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for reading source locations with retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Fetch returns the raw bytes at an HTTP(S) URL or a local path.
	Fetch(ctx context.Context, location string) ([]byte, error)
}
