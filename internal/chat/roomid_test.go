package chat

import "testing"

func TestRoomIDIsOrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"2", "10"},
		{"alice", "bob"},
		{"7", "7b"},
	}

	for _, pair := range pairs {
		forward := RoomID(pair[0], pair[1])
		reverse := RoomID(pair[1], pair[0])
		if forward != reverse {
			t.Errorf("expected RoomID(%q, %q) == RoomID(%q, %q), got %q and %q",
				pair[0], pair[1], pair[1], pair[0], forward, reverse)
		}
	}
}

func TestRoomIDJoinsSortedIDs(t *testing.T) {
	if got := RoomID("u2", "u1"); got != "u1_u2" {
		t.Errorf("expected u1_u2, got %q", got)
	}
	if got := RoomID("u1", "u2"); got != "u1_u2" {
		t.Errorf("expected u1_u2, got %q", got)
	}
}

func TestRoomIDDistinctPairsDoNotCollide(t *testing.T) {
	if RoomID("u1", "u2") == RoomID("u1", "u3") {
		t.Errorf("expected distinct pairs to produce distinct room ids")
	}
}

func TestRoomIDForMatchesStringForm(t *testing.T) {
	if got := RoomIDFor(42, 7); got != RoomID("42", "7") {
		t.Errorf("expected numeric derivation to match string form, got %q", got)
	}
	if RoomIDFor(42, 7) != RoomIDFor(7, 42) {
		t.Errorf("expected RoomIDFor to be order independent")
	}
}
