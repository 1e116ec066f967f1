// Package geo describes the device geolocation capability the report flow
// uses before calling the incident repository. The repository itself only
// ever receives an already resolved coordinate pair.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
)

var ErrPermissionDenied = errors.New("location permission denied")

type Permission int

const (
	Denied Permission = iota
	Granted
)

// Address holds the reverse-geocoded fragments; any of them may be empty.
type Address struct {
	Street     string
	City       string
	Region     string
	PostalCode string
}

// Locator is the platform geolocation service.
type Locator interface {
	RequestPermission(ctx context.Context) (Permission, error)
	CurrentCoordinates(ctx context.Context) (models.Location, error)
	ReverseGeocode(ctx context.Context, loc models.Location) (Address, error)
}

// FormatAddress joins the non-empty fragments with ", ".
func FormatAddress(a Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.Region, a.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Fix is a located position with its display address.
type Fix struct {
	Location models.Location
	Address  string
}

// Locate asks for permission, reads the current position and resolves its
// address. A failed reverse lookup still returns the coordinates.
func Locate(ctx context.Context, l Locator) (*Fix, error) {
	perm, err := l.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("permission request failed: %w", err)
	}
	if perm != Granted {
		return nil, ErrPermissionDenied
	}

	loc, err := l.CurrentCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get coordinates: %w", err)
	}

	fix := &Fix{Location: loc}
	if addr, err := l.ReverseGeocode(ctx, loc); err == nil {
		fix.Address = FormatAddress(addr)
	}
	return fix, nil
}

// StaticLocator always reports the same position. The CLI uses it for
// coordinates typed in by hand.
type StaticLocator struct {
	Location models.Location
	Address  Address
	Deny     bool
}

func (s StaticLocator) RequestPermission(ctx context.Context) (Permission, error) {
	if s.Deny {
		return Denied, nil
	}
	return Granted, nil
}

func (s StaticLocator) CurrentCoordinates(ctx context.Context) (models.Location, error) {
	return s.Location, nil
}

func (s StaticLocator) ReverseGeocode(ctx context.Context, loc models.Location) (Address, error) {
	return s.Address, nil
}
