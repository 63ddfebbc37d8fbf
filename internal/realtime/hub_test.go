package realtime

import "testing"

func TestRoomMembership(t *testing.T) {
	h := NewHub()

	h.JoinRoom("room_1", "s1")
	h.JoinRoom("room_1", "s2")
	if len(h.rooms["room_1"]) != 2 {
		t.Fatalf("room members = %v", h.rooms["room_1"])
	}

	h.LeaveRoom("room_1", "s1")
	if h.rooms["room_1"]["s1"] {
		t.Fatal("s1 should have left")
	}

	h.LeaveRoom("room_1", "s2")
	if _, ok := h.rooms["room_1"]; ok {
		t.Fatal("empty room should be dropped")
	}

	// Whitespace-only ids are rejected.
	h.JoinRoom("  ", "s1")
	h.JoinRoom("room_2", " ")
	if len(h.rooms) != 0 {
		t.Fatalf("rooms = %v", h.rooms)
	}
}

func TestBroadcastWithoutConnectionsIsSafe(t *testing.T) {
	h := NewHub()
	h.JoinRoom("room_1", "s1")

	// No connection registered for s1: both sends are silent no-ops.
	h.ToRoom("room_1", "game_state_update", map[string]int{"hp": 90})
	h.ToActor("s1", "turn_order", nil)
}
