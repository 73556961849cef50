package handlers

import (
	"log"
	"net/http"

	"github.com/evanly-gh/remember-me/internal/roster"
	"github.com/evanly-gh/remember-me/internal/store"
	"github.com/evanly-gh/remember-me/internal/web/middleware"
)

// recentHistoryLimit is how many recent dates/locations/events a roster
// entry carries.
const recentHistoryLimit = 3

// RosterHandler serves the reconciled profile roster. Groups are recomputed
// from a fresh record fetch on every request; nothing here caches.
type RosterHandler struct {
	records store.RecordStore
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(records store.RecordStore) *RosterHandler {
	return &RosterHandler{records: records}
}

// RosterEntry is one person in the roster response.
type RosterEntry struct {
	Name       string               `json:"name"`
	PhotoCount int                  `json:"photo_count"`
	Canonical  roster.PhotoRecord   `json:"canonical"`
	History    []roster.PhotoRecord `json:"history"`
	Recent     roster.RecentSummary `json:"recent"`
}

// Get handles GET /api/v1/roster with an optional ?q= search filter.
func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())

	records, err := h.records.ListByOwner(r.Context(), owner)
	if err != nil {
		log.Printf("failed to load records for owner %s: %v", sanitizeForLog(owner), err)
		respondError(w, http.StatusInternalServerError, "failed to load roster")
		return
	}

	groups := roster.Reconcile(records)
	filtered := roster.Search(groups, r.URL.Query().Get("q"))

	response := make([]RosterEntry, len(filtered))
	for i, group := range filtered {
		response[i] = RosterEntry{
			Name:       group.Name,
			PhotoCount: len(group.History),
			Canonical:  group.Canonical,
			History:    group.History,
			Recent:     group.Recent(recentHistoryLimit),
		}
	}

	respondJSON(w, http.StatusOK, response)
}
