package chat

import "strconv"

// RoomID returns the canonical conversation id for two participant ids.
// The ids are sorted lexicographically and joined with an underscore, so
// RoomID(a, b) == RoomID(b, a) and distinct pairs never collide.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// RoomIDFor derives the room id for two numeric user ids.
func RoomIDFor(a, b int64) string {
	return RoomID(strconv.FormatInt(a, 10), strconv.FormatInt(b, 10))
}
