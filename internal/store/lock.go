package store

import (
	"fmt"
	"sync"
)

// slotLocks serializes booking admission per (room, date). Two racing
// requests for overlapping windows on the same room and date take the same
// mutex, so the check-then-insert sequence inside the transaction cannot
// interleave.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for a room/date pair, creating it on first use.
// Locks are never removed; the key space is bounded by rooms x active dates.
func (s *slotLocks) get(roomID int64, date string) *sync.Mutex {
	key := fmt.Sprintf("%d|%s", roomID, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}
