package schedule

import "sort"

// Entry is the detector's view of a timetable entry. RoomID zero marks a
// dangling room reference: the entry is skipped for room comparisons but
// still checked for lecturer clashes.
type Entry struct {
	ID          int64
	CourseCode  string
	Subject     string
	RoomID      int64
	Day         string
	Window      Interval
	LecturerIDs []int64
}

// Conflict pairs two timetable entries that clash on a room or a lecturer on
// the same day. First.ID < Second.ID always holds, so a pair is reported
// exactly once regardless of input order.
type Conflict struct {
	First  Entry
	Second Entry
}

// DetectConflicts finds every pair of same-day entries that overlap in time
// while sharing a room or at least one lecturer. Output is ordered by
// (First.ID, Second.ID) and independent of input order.
func DetectConflicts(entries []Entry) []Conflict {
	byDay := make(map[string][]Entry)
	for _, e := range entries {
		byDay[e.Day] = append(byDay[e.Day], e)
	}

	var conflicts []Conflict
	for _, day := range byDay {
		sort.Slice(day, func(i, j int) bool { return day[i].ID < day[j].ID })
		for i := 0; i < len(day); i++ {
			for j := i + 1; j < len(day); j++ {
				a, b := day[i], day[j]
				if !a.Window.Overlaps(b.Window) {
					continue
				}
				if sameRoom(a, b) || sharedLecturer(a, b) {
					conflicts = append(conflicts, Conflict{First: a, Second: b})
				}
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].First.ID != conflicts[j].First.ID {
			return conflicts[i].First.ID < conflicts[j].First.ID
		}
		return conflicts[i].Second.ID < conflicts[j].Second.ID
	})
	return conflicts
}

func sameRoom(a, b Entry) bool {
	return a.RoomID != 0 && a.RoomID == b.RoomID
}

func sharedLecturer(a, b Entry) bool {
	for _, la := range a.LecturerIDs {
		for _, lb := range b.LecturerIDs {
			if la == lb {
				return true
			}
		}
	}
	return false
}
