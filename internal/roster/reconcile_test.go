package roster

import (
	"reflect"
	"testing"
	"time"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func record(id, name string, createdOffset time.Duration) PhotoRecord {
	return PhotoRecord{
		ID:        id,
		OwnerID:   "owner-1",
		Name:      name,
		PhotoURL:  "/photos/owner-1/" + id + ".jpg",
		CreatedAt: baseTime.Add(createdOffset),
	}
}

func TestReconcile_MostRecentIsCanonical(t *testing.T) {
	records := []PhotoRecord{
		record("a", "Ann", 0),
		record("b", "Ann", time.Hour),
	}

	groups := Reconcile(records)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	group := groups["Ann"]
	if group == nil {
		t.Fatal("expected group 'Ann'")
	}
	if group.Canonical.ID != "b" {
		t.Errorf("expected canonical 'b', got '%s'", group.Canonical.ID)
	}
	if len(group.History) != 2 {
		t.Errorf("expected history length 2, got %d", len(group.History))
	}
	if group.History[0].ID != "b" || group.History[1].ID != "a" {
		t.Errorf("expected newest-first history, got %v", group.History)
	}
}

func TestReconcile_TieBrokenByID(t *testing.T) {
	// Equal timestamps: the smallest ID wins, every time, regardless of
	// input order.
	orders := [][]PhotoRecord{
		{record("z", "Bob", 0), record("a", "Bob", 0), record("m", "Bob", 0)},
		{record("m", "Bob", 0), record("z", "Bob", 0), record("a", "Bob", 0)},
		{record("a", "Bob", 0), record("m", "Bob", 0), record("z", "Bob", 0)},
	}

	for i, records := range orders {
		groups := Reconcile(records)
		if got := groups["Bob"].Canonical.ID; got != "a" {
			t.Errorf("input order %d: expected canonical 'a', got '%s'", i, got)
		}
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	records := []PhotoRecord{
		record("1", "Ann", time.Minute),
		record("2", "Bob", 2*time.Minute),
		record("3", "Ann", 3*time.Minute),
		record("4", "Cleo", 0),
		record("5", "Bob", 2*time.Minute), // tie with "2"
	}

	first := Reconcile(records)
	for range 10 {
		again := Reconcile(records)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("repeated reconciliation produced different groupings")
		}
	}
}

func TestReconcile_NamesAreCaseSensitive(t *testing.T) {
	records := []PhotoRecord{
		record("1", "ann", 0),
		record("2", "Ann", 0),
	}

	groups := Reconcile(records)

	if len(groups) != 2 {
		t.Errorf("expected case-distinct names to form 2 groups, got %d", len(groups))
	}
}

func TestReconcile_Empty(t *testing.T) {
	if groups := Reconcile(nil); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestRecent_SkipsEmptyValues(t *testing.T) {
	group := &ProfileGroup{
		History: []PhotoRecord{
			{ID: "4", Date: "2025-06-04", Location: "", Event: "dinner"},
			{ID: "3", Date: "", Location: "Prague", Event: ""},
			{ID: "2", Date: "2025-06-02", Location: "Brno", Event: "conference"},
			{ID: "1", Date: "2025-06-01", Location: "Ostrava", Event: "wedding"},
		},
	}

	summary := group.Recent(3)

	wantDates := []string{"2025-06-04", "2025-06-02", "2025-06-01"}
	if !reflect.DeepEqual(summary.Dates, wantDates) {
		t.Errorf("dates = %v, want %v", summary.Dates, wantDates)
	}
	wantLocations := []string{"Prague", "Brno", "Ostrava"}
	if !reflect.DeepEqual(summary.Locations, wantLocations) {
		t.Errorf("locations = %v, want %v", summary.Locations, wantLocations)
	}
	wantEvents := []string{"dinner", "conference", "wedding"}
	if !reflect.DeepEqual(summary.Events, wantEvents) {
		t.Errorf("events = %v, want %v", summary.Events, wantEvents)
	}
}

func TestRecent_RespectsLimit(t *testing.T) {
	group := &ProfileGroup{
		History: []PhotoRecord{
			{Date: "2025-06-05"}, {Date: "2025-06-04"}, {Date: "2025-06-03"},
			{Date: "2025-06-02"}, {Date: "2025-06-01"},
		},
	}

	summary := group.Recent(3)
	if len(summary.Dates) != 3 {
		t.Errorf("expected 3 recent dates, got %d", len(summary.Dates))
	}
}

func TestSearch(t *testing.T) {
	groups := Reconcile([]PhotoRecord{
		record("1", "Jan Novák", 0),
		record("2", "Ann Smith", 0),
		record("3", "Hana Marie", 0),
	})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Ann Smith", "Hana Marie", "Jan Novák"}},
		{"ann", []string{"Ann Smith"}},
		{"AN", []string{"Ann Smith", "Hana Marie", "Jan Novák"}},
		{"novak", []string{"Jan Novák"}}, // diacritic-insensitive
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, group := range Search(groups, tt.query) {
				got = append(got, group.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSorted_StableOrder(t *testing.T) {
	groups := Reconcile([]PhotoRecord{
		record("1", "Cleo", 0),
		record("2", "Ann", 0),
		record("3", "Bob", 0),
	})

	var names []string
	for _, group := range Sorted(groups) {
		names = append(names, group.Name)
	}
	want := []string{"Ann", "Bob", "Cleo"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Sorted order = %v, want %v", names, want)
	}
}
