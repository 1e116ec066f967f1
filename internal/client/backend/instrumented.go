package backend

import (
	"context"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
)

// Operation names reported to a Recorder.
const (
	OpCreate         = "create"
	OpList           = "list"
	OpListByCategory = "list_by_category"
	OpListByOwner    = "list_by_owner"
)

type Recorder interface {
	Observe(op string, d time.Duration, err error)
}

type instrumented struct {
	next Adapter
	rec  Recorder
	now  func() time.Time
}

// Instrument wraps next so every call is reported to rec. A nil rec returns next unchanged.
func Instrument(next Adapter, rec Recorder) Adapter {
	if rec == nil {
		return next
	}
	return &instrumented{next: next, rec: rec, now: time.Now}
}

func (a *instrumented) observe(op string, start time.Time, err error) {
	a.rec.Observe(op, a.now().Sub(start), err)
}

func (a *instrumented) Create(ctx context.Context, inc *models.Incident) (*models.Incident, error) {
	start := a.now()
	res, err := a.next.Create(ctx, inc)
	a.observe(OpCreate, start, err)
	return res, err
}

func (a *instrumented) List(ctx context.Context) ([]models.Incident, error) {
	start := a.now()
	res, err := a.next.List(ctx)
	a.observe(OpList, start, err)
	return res, err
}

func (a *instrumented) ListByCategory(ctx context.Context, category string) ([]models.Incident, error) {
	start := a.now()
	res, err := a.next.ListByCategory(ctx, category)
	a.observe(OpListByCategory, start, err)
	return res, err
}

func (a *instrumented) ListByOwner(ctx context.Context, userID string) ([]models.Incident, error) {
	start := a.now()
	res, err := a.next.ListByOwner(ctx, userID)
	a.observe(OpListByOwner, start, err)
	return res, err
}
