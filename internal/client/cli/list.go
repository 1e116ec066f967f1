package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/client/taxonomy"
)

// List prints all incidents, or one category of them.
func (a *App) List(ctx context.Context, category string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var (
		items []models.Incident
		err   error
	)
	if category == "" {
		items, err = a.incidents.List(ctx)
	} else {
		items, err = a.incidents.ListByCategory(ctx, category)
	}
	if err != nil {
		return err
	}

	a.printIncidents(items)
	return nil
}

// Mine prints the incidents reported by the signed-in user.
func (a *App) Mine(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	items, err := a.incidents.ListOwnedByCurrentUser(ctx)
	if err != nil {
		return err
	}

	a.printIncidents(items)
	return nil
}

// Categories prints the category table.
func (a *App) Categories(ctx context.Context) error {
	a.printCategories()
	return nil
}

func (a *App) printCategories() {
	fmt.Fprintln(a.out, "Categories:")
	for _, c := range taxonomy.AllCategories() {
		fmt.Fprintf(a.out, "  %-15s %-20s icon=%s color=%s\n", c.ID, c.Label, c.Icon, c.Color)
	}
}

func (a *App) printIncidents(items []models.Incident) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No incidents")
		return
	}
	for _, inc := range items {
		fmt.Fprintf(a.out, "%s  [%s] %s  (%s, %s)\n",
			inc.CreatedAt.Local().Format(time.DateTime),
			taxonomy.Label(inc.Category),
			inc.Title,
			taxonomy.IconFor(inc.Category),
			taxonomy.ColorFor(inc.Category),
		)
		fmt.Fprintf(a.out, "    %s\n", inc.Description)
		if inc.Location != nil {
			fmt.Fprintf(a.out, "    at %.5f,%.5f\n", inc.Location.Latitude, inc.Location.Longitude)
		}
		if inc.ImageURL != "" {
			fmt.Fprintf(a.out, "    photo %s\n", inc.ImageURL)
		}
		fmt.Fprintf(a.out, "    id %s by %s\n", inc.ID, inc.UserID)
	}
}
