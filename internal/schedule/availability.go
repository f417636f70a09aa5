package schedule

import "sort"

// FreeSlots subtracts the busy intervals from the operating window and
// returns the remaining bookable gaps in chronological order. Gaps shorter
// than minDuration minutes are dropped. Busy intervals may overlap each other
// and may extend past the window; they are clamped before subtraction.
func FreeSlots(window Interval, busy []Interval, minDuration int) []Interval {
	if !window.Valid() {
		return nil
	}

	clamped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if !b.Overlaps(window) {
			continue
		}
		if b.Start < window.Start {
			b.Start = window.Start
		}
		if b.End > window.End {
			b.End = window.End
		}
		clamped = append(clamped, b)
	}
	sort.Slice(clamped, func(i, j int) bool {
		if clamped[i].Start != clamped[j].Start {
			return clamped[i].Start < clamped[j].Start
		}
		return clamped[i].End < clamped[j].End
	})

	free := make([]Interval, 0, len(clamped)+1)
	cursor := window.Start
	for _, b := range clamped {
		if b.Start > cursor {
			free = appendIfBookable(free, Interval{Start: cursor, End: b.Start}, minDuration)
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < window.End {
		free = appendIfBookable(free, Interval{Start: cursor, End: window.End}, minDuration)
	}
	return free
}

func appendIfBookable(slots []Interval, gap Interval, minDuration int) []Interval {
	if gap.Duration() < minDuration {
		return slots
	}
	return append(slots, gap)
}

// Fits reports whether the requested interval lies fully inside one of the
// free slots.
func Fits(requested Interval, free []Interval) bool {
	for _, slot := range free {
		if slot.Contains(requested) {
			return true
		}
	}
	return false
}
