package interfaces

import (
	"context"

	"tariff-observer/src/models"
)

// -----------------------------------------------------------------------------
// IDashboardProvider is what the transports need from the dashboard service.
// -----------------------------------------------------------------------------

type IDashboardProvider interface {

	// Current returns the last build, building once when there is none.
	Current(ctx context.Context) (*models.MDashboard, error)

	// -----------------------------------------------------------------------------

	// Build reloads every source and replaces the current dashboard.
	Build(ctx context.Context) (*models.MDashboard, error)
}
