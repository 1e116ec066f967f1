// Package remote implements the backend adapter and the account directory
// against the managed PostgreSQL store. Ids and created_at are assigned by
// the database at insert time and listing order is delegated to the server.
package remote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/dmitrijs2005/citywatch/internal/dbx"
)

const selectIncidents = `SELECT id, title, description, category, image_url, location_lat, location_lng, created_at, user_id
		 FROM incidents`

type Adapter struct {
	db dbx.DBTX
}

func NewAdapter(db dbx.DBTX) *Adapter {
	return &Adapter{db: db}
}

func (r *Adapter) Create(ctx context.Context, inc *models.Incident) (*models.Incident, error) {
	query :=
		`INSERT INTO incidents (title, description, category, image_url, location_lat, location_lng, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	var lat, lng sql.NullFloat64
	if inc.Location != nil {
		lat = sql.NullFloat64{Float64: inc.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: inc.Location.Longitude, Valid: true}
	}
	imageURL := sql.NullString{String: inc.ImageURL, Valid: inc.ImageURL != ""}

	stored := *inc
	err := r.db.QueryRowContext(ctx, query,
		inc.Title, inc.Description, inc.Category, imageURL, lat, lng, inc.UserID).
		Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrBackendUnavailable, err)
	}

	return &stored, nil
}

func (r *Adapter) List(ctx context.Context) ([]models.Incident, error) {
	return r.query(ctx, selectIncidents+`
		 ORDER BY created_at DESC`)
}

func (r *Adapter) ListByCategory(ctx context.Context, category string) ([]models.Incident, error) {
	return r.query(ctx, selectIncidents+`
		 WHERE category = $1
		 ORDER BY created_at DESC`, category)
}

func (r *Adapter) ListByOwner(ctx context.Context, userID string) ([]models.Incident, error) {
	return r.query(ctx, selectIncidents+`
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
}

// query returns rows in the order the server produced them.
func (r *Adapter) query(ctx context.Context, query string, args ...any) ([]models.Incident, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrBackendUnavailable, err)
	}
	defer rows.Close()

	result := make([]models.Incident, 0)
	for rows.Next() {
		var (
			inc      models.Incident
			imageURL sql.NullString
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&inc.ID, &inc.Title, &inc.Description, &inc.Category,
			&imageURL, &lat, &lng, &inc.CreatedAt, &inc.UserID); err != nil {
			return nil, fmt.Errorf("%w: scan error: %w", common.ErrBackendUnavailable, err)
		}
		inc.ImageURL = imageURL.String
		// A half-filled pair is treated as no location.
		if lat.Valid && lng.Valid {
			inc.Location = &models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		result = append(result, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrBackendUnavailable, err)
	}
	return result, nil
}
