// Package backend defines the storage contract the incident repository is
// written against. The local (device key-value) and remote (PostgreSQL)
// adapters differ only in how ids and creation timestamps are assigned.
package backend

import (
	"context"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
)

// Adapter persists and queries incidents.
//
// Every listing is ordered by CreatedAt descending (most recent first).
// I/O failures are reported wrapped in common.ErrBackendUnavailable.
type Adapter interface {
	// Create stores inc, assigning ID and CreatedAt, and returns the stored record.
	// UserID must already be set by the caller.
	Create(ctx context.Context, inc *models.Incident) (*models.Incident, error)

	List(ctx context.Context) ([]models.Incident, error)

	ListByCategory(ctx context.Context, category string) ([]models.Incident, error)

	ListByOwner(ctx context.Context, userID string) ([]models.Incident, error)
}
