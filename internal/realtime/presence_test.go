package realtime

import "testing"

func TestRegisterFirstWriterWins(t *testing.T) {
	registry := NewRegistry()

	if !registry.Register("alice", "conn-1") {
		t.Fatal("first register should win")
	}
	if registry.Register("alice", "conn-2") {
		t.Fatal("second register for the same user should lose")
	}

	connID, ok := registry.Lookup("alice")
	if !ok || connID != "conn-1" {
		t.Errorf("expected mapping to conn-1, got %q (ok=%v)", connID, ok)
	}
}

func TestUnregisterOnlyClearsOwnMapping(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alice", "conn-1")
	registry.Register("alice", "conn-2")

	// The losing connection never owned a mapping.
	if userID, removed := registry.Unregister("conn-2"); removed {
		t.Errorf("unregister of the losing connection should be a no-op, freed %q", userID)
	}
	if _, ok := registry.Lookup("alice"); !ok {
		t.Error("winner's mapping should survive the loser disconnecting")
	}

	userID, removed := registry.Unregister("conn-1")
	if !removed || userID != "alice" {
		t.Errorf("expected unregister to free alice, got %q (removed=%v)", userID, removed)
	}
	if _, ok := registry.Lookup("alice"); ok {
		t.Error("expected no mapping after disconnect")
	}
}

func TestSnapshotListsAllEntries(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alice", "conn-1")
	registry.Register("bob", "conn-2")

	entries := registry.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	byUser := map[string]string{}
	for _, e := range entries {
		byUser[e.UserID] = e.ConnID
	}
	if byUser["alice"] != "conn-1" || byUser["bob"] != "conn-2" {
		t.Errorf("unexpected snapshot: %v", byUser)
	}
}

func TestLookupOfflineUser(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Lookup("ghost"); ok {
		t.Error("expected no mapping for a user who never connected")
	}
}
