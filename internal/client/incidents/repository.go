// Package incidents implements the incident repository: validation,
// ownership stamping and listing on top of a backend.Adapter.
//
// The repository never retries and never recovers from adapter failures;
// every error reaches the caller as one of the common sentinel kinds.
package incidents

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/citywatch/internal/client/backend"
	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/client/taxonomy"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/dmitrijs2005/citywatch/internal/logging"
)

// SessionResolver reports the signed-in user, if any.
type SessionResolver interface {
	CurrentUser(ctx context.Context) (*models.User, bool)
}

type Repository struct {
	adapter  backend.Adapter
	sessions SessionResolver
	log      logging.Logger
}

func NewRepository(adapter backend.Adapter, sessions SessionResolver, log logging.Logger) *Repository {
	return &Repository{adapter: adapter, sessions: sessions, log: log}
}

// Create validates d, stamps it with the current user and stores it.
// Invalid drafts and missing sessions fail before anything is written.
func (r *Repository) Create(ctx context.Context, d models.Draft) (*models.Incident, error) {
	d = Normalize(d)
	if err := Validate(d); err != nil {
		return nil, err
	}

	user, ok := r.sessions.CurrentUser(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: sign in to report an incident", common.ErrAuthentication)
	}

	inc, err := r.adapter.Create(ctx, d.ToIncident(user.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to store incident: %w", err)
	}

	r.log.Info(ctx, "incident created", "id", inc.ID, "category", inc.Category, "owner", inc.UserID)
	return inc, nil
}

// List returns every incident, most recent first.
func (r *Repository) List(ctx context.Context) ([]models.Incident, error) {
	return r.adapter.List(ctx)
}

// ListByCategory returns the incidents of one category. taxonomy.All
// returns the same sequence as List.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]models.Incident, error) {
	category = strings.TrimSpace(category)
	if category == taxonomy.All {
		return r.adapter.List(ctx)
	}
	if !taxonomy.IsValid(category) {
		return nil, fmt.Errorf("%w: unknown category %q", common.ErrValidation, category)
	}
	return r.adapter.ListByCategory(ctx, category)
}

// ListOwnedByCurrentUser returns the incidents reported by the signed-in user.
func (r *Repository) ListOwnedByCurrentUser(ctx context.Context) ([]models.Incident, error) {
	user, ok := r.sessions.CurrentUser(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: sign in to see your reports", common.ErrAuthentication)
	}
	return r.adapter.ListByOwner(ctx, user.ID)
}

// Normalize trims surrounding whitespace from the free-text fields.
func Normalize(d models.Draft) models.Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	return d
}

// Validate checks the fields a draft needs before it can be stored.
func Validate(d models.Draft) error {
	switch {
	case d.Title == "":
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	case d.Description == "":
		return fmt.Errorf("%w: description is required", common.ErrValidation)
	case d.Category == "":
		return fmt.Errorf("%w: category is required", common.ErrValidation)
	case !taxonomy.IsValid(d.Category):
		return fmt.Errorf("%w: unknown category %q", common.ErrValidation, d.Category)
	}

	if loc := d.Location; loc != nil {
		if math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
			return fmt.Errorf("%w: latitude %v out of range", common.ErrValidation, loc.Latitude)
		}
		if math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
			return fmt.Errorf("%w: longitude %v out of range", common.ErrValidation, loc.Longitude)
		}
	}

	if d.ImageURL != "" {
		u, err := url.Parse(d.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: image url must be an absolute http(s) url", common.ErrValidation)
		}
	}
	return nil
}
