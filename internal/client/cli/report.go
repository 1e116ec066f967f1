package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/citywatch/internal/client/geo"
	"github.com/dmitrijs2005/citywatch/internal/client/incidents"
	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/client/taxonomy"
	"github.com/dmitrijs2005/citywatch/internal/common"
)

// Report walks the user through a new incident report: title, description,
// category, an optional photo and an optional "lat,lng" position.
func (a *App) Report(ctx context.Context) error {
	var d models.Draft
	var err error

	if d.Title, err = a.prompt("Title"); err != nil {
		return err
	}
	if d.Description, err = getMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}

	a.printCategories()
	if d.Category, err = a.prompt("Category id"); err != nil {
		return err
	}

	photo, err := a.prompt("Photo file (empty to skip)")
	if err != nil {
		return err
	}
	if photo != "" && a.uploader == nil {
		fmt.Fprintln(a.out, "Image uploads are not configured, skipping photo")
		photo = ""
	}

	pos, err := a.prompt("Location as lat,lng (empty to skip)")
	if err != nil {
		return err
	}
	if pos != "" {
		loc, err := ParseLocation(pos)
		if err != nil {
			return err
		}
		fix, err := geo.Locate(ctx, geo.StaticLocator{Location: loc})
		if err != nil {
			return err
		}
		d.Location = &fix.Location
		if fix.Address != "" {
			fmt.Fprintln(a.out, "Address:", fix.Address)
		}
	}

	d = incidents.Normalize(d)
	if err := incidents.Validate(d); err != nil {
		return err
	}

	if photo != "" {
		upCtx, cancel := a.withTimeout(ctx)
		d.ImageURL, err = a.uploader.Upload(upCtx, photo)
		cancel()
		if err != nil {
			return fmt.Errorf("photo upload: %w", err)
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	inc, err := a.incidents.Create(ctx, d)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Reported %q as %s (id %s)\n", inc.Title, taxonomy.Label(inc.Category), inc.ID)
	return nil
}

// ParseLocation parses "lat,lng". Range checks are left to the repository.
func ParseLocation(s string) (models.Location, error) {
	latS, lngS, ok := strings.Cut(s, ",")
	if !ok {
		return models.Location{}, fmt.Errorf("%w: location must look like 52.52,13.40", common.ErrValidation)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: bad latitude %q", common.ErrValidation, latS)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: bad longitude %q", common.ErrValidation, lngS)
	}
	return models.Location{Latitude: lat, Longitude: lng}, nil
}
