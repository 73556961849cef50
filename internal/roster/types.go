// Package roster turns a user's flat photo record history into a
// deduplicated, searchable list of people.
package roster

import "time"

// PhotoRecord is one persisted observation of a person. IDs and creation
// timestamps are assigned by the record store, never by callers.
type PhotoRecord struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photo_url"`
	Event     string    `json:"event,omitempty"`
	Location  string    `json:"location,omitempty"`
	Date      string    `json:"date,omitempty"` // YYYY-MM-DD, free text from the form
	CreatedAt time.Time `json:"created_at"`
}

// ProfileGroup is the set of one owner's records sharing a name. It is
// derived on every roster load and never stored.
type ProfileGroup struct {
	Name      string        `json:"name"`
	Canonical PhotoRecord   `json:"canonical"`
	History   []PhotoRecord `json:"history"` // newest first
}

// RecentSummary holds the latest non-empty metadata values of a group,
// shown as "recent history" next to a profile.
type RecentSummary struct {
	Dates     []string `json:"dates,omitempty"`
	Locations []string `json:"locations,omitempty"`
	Events    []string `json:"events,omitempty"`
}
