// Package taxonomy is the single source of incident categories and their
// display metadata. List, map and profile views all read from here.
//
// Lookups never fail: unknown or legacy ids resolve to the "unknown
// category" color and icon so presentation code cannot crash on old data.
package taxonomy

import (
	"unicode"
	"unicode/utf8"
)

// All is the list-filter sentinel meaning "no category filter".
// It is not a category and is never stored on an incident.
const All = "all"

const (
	UnknownColor = "red"
	UnknownIcon  = "alert-circle"
)

// Category is a taxonomy entry.
type Category struct {
	ID    string
	Label string
	Icon  string
	Color string
}

var categories = []Category{
	{ID: "accident", Label: "Accident", Icon: "car-crash", Color: "red"},
	{ID: "infrastructure", Label: "Infrastructure", Icon: "road", Color: "orange"},
	{ID: "safety", Label: "Safety", Icon: "shield-alert", Color: "yellow"},
	{ID: "environment", Label: "Environment", Icon: "leaf", Color: "green"},
	{ID: "noise", Label: "Noise", Icon: "volume-high", Color: "blue"},
	{ID: "vandalism", Label: "Vandalism", Icon: "spray-can", Color: "purple"},
	{ID: "health", Label: "Health", Icon: "medical-bag", Color: "pink"},
	{ID: "animal", Label: "Animal", Icon: "paw", Color: "brown"},
	{ID: "emergency", Label: "Emergency", Icon: "alarm-light", Color: "red"},
	{ID: "other", Label: "Other", Icon: "dots-horizontal", Color: "gray"},
}

var byID = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}()

// AllCategories returns the taxonomy in display order. The slice is a copy.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup returns the category with the given id.
func Lookup(id string) (Category, bool) {
	c, ok := byID[id]
	return c, ok
}

// IsValid reports whether id names a category. The empty placeholder and
// the All sentinel are not categories.
func IsValid(id string) bool {
	_, ok := byID[id]
	return ok
}

func ColorFor(id string) string {
	if c, ok := byID[id]; ok {
		return c.Color
	}
	return UnknownColor
}

func IconFor(id string) string {
	if c, ok := byID[id]; ok {
		return c.Icon
	}
	return UnknownIcon
}

// Label returns the display label, or the id with its first letter
// upper-cased for ids outside the taxonomy.
func Label(id string) string {
	if c, ok := byID[id]; ok {
		return c.Label
	}
	if id == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(id)
	return string(unicode.ToUpper(r)) + id[size:]
}
