// Package local implements the backend adapter and the account directory on
// top of the device-local key-value store. Incidents live under the
// "incidents" key as one JSON array kept most-recent-first.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/client/repositories/kv"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/google/uuid"
)

const IncidentsKey = "incidents"

type Adapter struct {
	store kv.Store
	now   func() time.Time
	newID func() (string, error)
}

func NewAdapter(store kv.Store) *Adapter {
	return &Adapter{store: store, now: time.Now, newID: newV7}
}

// newV7 returns a time-ordered UUID, so ids sort the same way the records
// were inserted on this device.
func newV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create prepends inc to the stored list inside one atomic update, so
// overlapping submissions each land as their own record.
func (a *Adapter) Create(ctx context.Context, inc *models.Incident) (*models.Incident, error) {
	id, err := a.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate incident id: %w", err)
	}

	stored := *inc
	stored.ID = id

	err = a.store.Update(ctx, IncidentsKey, func(current []byte) ([]byte, error) {
		list, err := decodeIncidents(current)
		if err != nil {
			return nil, err
		}
		// Stamp inside the update so CreatedAt follows the write order, even
		// when the device clock has stepped back since the previous create.
		stored.CreatedAt = a.now().UTC()
		if len(list) > 0 && list[0].CreatedAt.After(stored.CreatedAt) {
			stored.CreatedAt = list[0].CreatedAt
		}
		list = append([]models.Incident{stored}, list...)
		return json.Marshal(list)
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

func (a *Adapter) List(ctx context.Context) ([]models.Incident, error) {
	return a.load(ctx, func(models.Incident) bool { return true })
}

func (a *Adapter) ListByCategory(ctx context.Context, category string) ([]models.Incident, error) {
	return a.load(ctx, func(inc models.Incident) bool { return inc.Category == category })
}

func (a *Adapter) ListByOwner(ctx context.Context, userID string) ([]models.Incident, error) {
	return a.load(ctx, func(inc models.Incident) bool { return inc.UserID == userID })
}

func (a *Adapter) load(ctx context.Context, keep func(models.Incident) bool) ([]models.Incident, error) {
	raw, err := a.store.Get(ctx, IncidentsKey)
	if err != nil {
		return nil, err
	}
	all, err := decodeIncidents(raw)
	if err != nil {
		return nil, err
	}

	result := make([]models.Incident, 0, len(all))
	for _, inc := range all {
		if keep(inc) {
			result = append(result, inc)
		}
	}

	// Prepending already keeps the list ordered; the stable sort only
	// matters for lists written by older versions or by hand.
	slices.SortStableFunc(result, func(a, b models.Incident) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

// decodeIncidents treats an absent key as an empty list. A value that does
// not parse means the device store is corrupt and is reported as unavailable.
func decodeIncidents(raw []byte) ([]models.Incident, error) {
	if len(raw) == 0 {
		return []models.Incident{}, nil
	}
	var list []models.Incident
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: malformed %s record: %w", common.ErrBackendUnavailable, IncidentsKey, err)
	}
	return list, nil
}
