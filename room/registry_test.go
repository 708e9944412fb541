package room

import "testing"

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry()

	r := reg.Create("Finals", "Alice", "conn-alice")
	if len(r.ID) != 4 {
		t.Errorf("Expected a 4 character room code, got %q", r.ID)
	}
	if r.Title != "Finals" {
		t.Errorf("Expected title Finals, got %q", r.Title)
	}
	if len(r.Players) != 1 || r.Players[0].Name != "Alice" {
		t.Fatalf("Creator should hold the first seat, got %+v", r.Players)
	}

	got, ok := reg.Get(r.ID)
	if !ok || got != r {
		t.Error("Get should return the created room")
	}
	if _, ok := reg.Get("nope"); ok {
		t.Error("Get must miss on an unknown id")
	}
}

func TestRegistry_CreateDefaultTitle(t *testing.T) {
	reg := NewRegistry()

	r := reg.Create("", "Alice", "conn-alice")
	if r.Title != "Untitled" {
		t.Errorf("Blank title should fall back to Untitled, got %q", r.Title)
	}
}

func TestRegistry_UniqueCodes(t *testing.T) {
	reg := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r := reg.Create("Room", "Alice", "conn-alice")
		if seen[r.ID] {
			t.Fatalf("Duplicate room code %q", r.ID)
		}
		seen[r.ID] = true
	}
	if reg.Count() != 100 {
		t.Errorf("Expected 100 rooms, got %d", reg.Count())
	}
}

func TestRegistry_DeleteIdempotent(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("Finals", "Alice", "conn-alice")

	reg.Delete(r.ID)
	if _, ok := reg.Get(r.ID); ok {
		t.Error("Deleted room should be gone")
	}
	reg.Delete(r.ID)
	if reg.Count() != 0 {
		t.Errorf("Expected empty registry, got %d rooms", reg.Count())
	}
}

func TestRegistry_ListNamesOnly(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("Finals", "Alice", "conn-alice")
	r.Join("Bob", "conn-bob")

	list := reg.List()
	if len(list) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(list))
	}
	s := list[0]
	if s.ID != r.ID || s.Title != "Finals" {
		t.Errorf("Summary mismatch: %+v", s)
	}
	if len(s.Players) != 2 || s.Players[0] != "Alice" || s.Players[1] != "Bob" {
		t.Errorf("Expected player names, got %v", s.Players)
	}
}
