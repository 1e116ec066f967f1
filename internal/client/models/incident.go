package models

import "time"

// Location is a resolved coordinate pair. Incidents carry either both
// coordinates or none, which is why it is only ever used by pointer.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Incident is a stored report. ID, CreatedAt and UserID are assigned at
// write time and never change afterwards.
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	Location    *Location `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id"`
}

// Draft is what the report flow submits. The repository validates it and
// turns it into an Incident owned by the current session.
type Draft struct {
	Title       string
	Description string
	Category    string
	ImageURL    string
	Location    *Location
}

// ToIncident copies the draft into a new, not yet persisted Incident owned
// by userID. The location is copied so later edits to the draft cannot
// reach the stored record.
func (d Draft) ToIncident(userID string) *Incident {
	inc := &Incident{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		UserID:      userID,
	}
	if d.Location != nil {
		loc := *d.Location
		inc.Location = &loc
	}
	return inc
}
