package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, roomID int64, day, start, end string, lecturers ...int64) Entry {
	iv, err := ParseInterval(start, end)
	if err != nil {
		panic(err)
	}
	return Entry{ID: id, RoomID: roomID, Day: day, Window: iv, LecturerIDs: lecturers}
}

func TestDetectConflicts_RoomClash(t *testing.T) {
	entries := []Entry{
		entry(1, 10, "Monday", "09:00", "10:30"),
		entry(2, 10, "Monday", "10:00", "11:00"),
		entry(3, 10, "Monday", "10:30", "11:30"),
	}

	conflicts := DetectConflicts(entries)
	require.Len(t, conflicts, 2)
	// 1 vs 2 overlap; 1 vs 3 touch at 10:30 only; 2 vs 3 overlap.
	assert.Equal(t, int64(1), conflicts[0].First.ID)
	assert.Equal(t, int64(2), conflicts[0].Second.ID)
	assert.Equal(t, int64(2), conflicts[1].First.ID)
	assert.Equal(t, int64(3), conflicts[1].Second.ID)
}

func TestDetectConflicts_LecturerClash(t *testing.T) {
	entries := []Entry{
		entry(1, 10, "Tuesday", "09:00", "10:00", 100),
		entry(2, 20, "Tuesday", "09:30", "10:30", 100, 200),
		entry(3, 30, "Tuesday", "09:30", "10:30", 300),
	}

	conflicts := DetectConflicts(entries)
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(1), conflicts[0].First.ID)
	assert.Equal(t, int64(2), conflicts[0].Second.ID)
}

func TestDetectConflicts_DifferentDaysNeverClash(t *testing.T) {
	entries := []Entry{
		entry(1, 10, "Monday", "09:00", "10:00", 100),
		entry(2, 10, "Tuesday", "09:00", "10:00", 100),
	}
	assert.Empty(t, DetectConflicts(entries))
}

func TestDetectConflicts_DanglingRoomSkipsRoomComparison(t *testing.T) {
	entries := []Entry{
		entry(1, 0, "Monday", "09:00", "10:00"),
		entry(2, 0, "Monday", "09:00", "10:00"),
		entry(3, 0, "Monday", "09:00", "10:00", 100),
		entry(4, 10, "Monday", "09:30", "10:30", 100),
	}

	conflicts := DetectConflicts(entries)
	// Entries with no resolvable room never clash on room, but lecturer
	// clashes are still detected.
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(3), conflicts[0].First.ID)
	assert.Equal(t, int64(4), conflicts[0].Second.ID)
}

// TestDetectConflicts_OrderIndependent verifies the detector reports the same
// pairs no matter how the input is ordered.
func TestDetectConflicts_OrderIndependent(t *testing.T) {
	a := entry(1, 10, "Friday", "09:00", "11:00")
	b := entry(2, 10, "Friday", "10:00", "12:00")
	c := entry(3, 10, "Friday", "11:30", "12:30")

	forward := DetectConflicts([]Entry{a, b, c})
	reversed := DetectConflicts([]Entry{c, b, a})

	require.Equal(t, len(forward), len(reversed))
	for i := range forward {
		assert.Equal(t, forward[i].First.ID, reversed[i].First.ID)
		assert.Equal(t, forward[i].Second.ID, reversed[i].Second.ID)
	}
}
