package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/schedule"
)

// Policy carries the configured booking rules the store applies. The
// operating window bounds every availability computation; it is injected
// here rather than assumed anywhere.
type Policy struct {
	Window         schedule.Interval
	MinSlotMinutes int
	DefaultStatus  model.BookingStatus
}

// NewBooking is an admission request.
type NewBooking struct {
	RoomName  string
	Date      string
	StartTime string
	EndTime   string
	UserID    int64
	Role      model.Role
	CourseID  *int64
}

// Store defines the database operations with nontrivial semantics. Plain
// CRUD goes through DB() directly.
type Store interface {
	DB() *gorm.DB

	// AvailableSlots computes the bookable windows for a room on a date.
	AvailableSlots(ctx context.Context, roomName, date string) (model.Room, []schedule.Interval, error)

	// CreateBooking validates and admits a booking request. Of two racing
	// requests for overlapping windows, exactly one succeeds.
	CreateBooking(ctx context.Context, req NewBooking) (model.Booking, error)

	// UpdateBookingStatus applies a status transition on behalf of an actor.
	UpdateBookingStatus(ctx context.Context, bookingID int64, next model.BookingStatus, actorID int64, actorRole model.Role) (model.Booking, error)

	// TimetableWithConflicts returns entries (optionally filtered by course
	// code) together with the detected room/lecturer clashes.
	TimetableWithConflicts(ctx context.Context, courseCode string) ([]model.TimetableEntry, []ConflictPair, error)

	// DueReminders returns confirmed bookings starting within the lead
	// window that have not been reminded yet.
	DueReminders(ctx context.Context, now time.Time, lead time.Duration) ([]model.Booking, error)

	// MarkReminderSent records that a reminder went out for the booking.
	MarkReminderSent(ctx context.Context, bookingID int64, at time.Time) error
}

type gormStore struct {
	db     *gorm.DB
	policy Policy
	locks  *slotLocks
}

// NewGormStore creates a new GORM-backed store with the given booking policy.
func NewGormStore(db *gorm.DB, policy Policy) Store {
	return &gormStore{db: db, policy: policy, locks: newSlotLocks()}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// busyIntervals collects the occupied windows for a room on a date: every
// pending/confirmed booking plus the whole operating window when any
// maintenance period covers the date.
func busyIntervals(tx *gorm.DB, room model.Room, date string, window schedule.Interval) ([]schedule.Interval, error) {
	var periods []model.MaintenancePeriod
	if err := tx.Where("room_id = ?", room.ID).Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("failed to load maintenance periods: %w", err)
	}
	for _, p := range periods {
		if p.Covers(date) {
			return []schedule.Interval{window}, nil
		}
	}

	var bookings []model.Booking
	if err := tx.Where("room_id = ? AND date = ? AND status IN ?",
		room.ID, date, []model.BookingStatus{model.BookingPending, model.BookingConfirmed}).
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	busy := make([]schedule.Interval, 0, len(bookings))
	for _, b := range bookings {
		iv, err := schedule.ParseInterval(b.StartTime, b.EndTime)
		if err != nil {
			log.Printf("booking %d has unparsable window %s-%s, treating slot as free: %v", b.ID, b.StartTime, b.EndTime, err)
			continue
		}
		busy = append(busy, iv)
	}
	return busy, nil
}

func (s *gormStore) AvailableSlots(ctx context.Context, roomName, date string) (model.Room, []schedule.Interval, error) {
	normalized, err := schedule.ParseDate(date)
	if err != nil {
		return model.Room{}, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var room model.Room
	if err := s.db.WithContext(ctx).Where("name = ?", roomName).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Room{}, nil, fmt.Errorf("%w: room %q", ErrNotFound, roomName)
		}
		return model.Room{}, nil, err
	}

	busy, err := busyIntervals(s.db.WithContext(ctx), room, normalized, s.policy.Window)
	if err != nil {
		return model.Room{}, nil, err
	}

	return room, schedule.FreeSlots(s.policy.Window, busy, s.policy.MinSlotMinutes), nil
}

func (s *gormStore) CreateBooking(ctx context.Context, req NewBooking) (model.Booking, error) {
	if req.RoomName == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return model.Booking{}, fmt.Errorf("%w: room, date, startTime and endTime are required", ErrValidation)
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	requested, err := schedule.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if requested.Duration() < s.policy.MinSlotMinutes {
		return model.Booking{}, fmt.Errorf("%w: bookings must be at least %d minutes", ErrValidation, s.policy.MinSlotMinutes)
	}

	var room model.Room
	if err := s.db.WithContext(ctx).Where("name = ?", req.RoomName).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Booking{}, fmt.Errorf("%w: room %q", ErrNotFound, req.RoomName)
		}
		return model.Booking{}, err
	}

	// Lecturer bookings must reference the course they are booking for.
	if req.Role == model.RoleLecturer {
		if req.CourseID == nil {
			return model.Booking{}, fmt.Errorf("%w: lecturer bookings require courseId", ErrValidation)
		}
	}
	if req.CourseID != nil {
		var course model.Course
		if err := s.db.WithContext(ctx).First(&course, *req.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.Booking{}, fmt.Errorf("%w: course %d", ErrNotFound, *req.CourseID)
			}
			return model.Booking{}, err
		}
	}

	// Serialize the check-then-insert per room/date so a racing request for
	// an overlapping window observes this one's write.
	lock := s.locks.get(room.ID, date)
	lock.Lock()
	defer lock.Unlock()

	booking := model.Booking{
		Reference: uuid.NewString(),
		RoomID:    room.ID,
		Date:      date,
		StartTime: schedule.FormatClock(requested.Start),
		EndTime:   schedule.FormatClock(requested.End),
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		Status:    s.policy.DefaultStatus,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		busy, err := busyIntervals(tx, room, date, s.policy.Window)
		if err != nil {
			return err
		}
		free := schedule.FreeSlots(s.policy.Window, busy, 0)
		if !schedule.Fits(requested, free) {
			return fmt.Errorf("%w: %s %s-%s is not available for room %q",
				ErrConflict, date, booking.StartTime, booking.EndTime, room.Name)
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (s *gormStore) UpdateBookingStatus(ctx context.Context, bookingID int64, next model.BookingStatus, actorID int64, actorRole model.Role) (model.Booking, error) {
	var booking model.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
			}
			return err
		}

		if actorRole != model.RoleAdmin {
			// Owners may only cancel their own bookings.
			if booking.UserID != actorID {
				return fmt.Errorf("%w: booking %d belongs to another user", ErrForbidden, bookingID)
			}
			if next != model.BookingCancelled {
				return fmt.Errorf("%w: only an admin can set status %q", ErrForbidden, next)
			}
		}

		if !booking.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, next)
		}

		booking.Status = next
		return tx.Save(&booking).Error
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// ConflictEntry is the identifying summary of one side of a conflict pair.
type ConflictEntry struct {
	ID        int64  `json:"id"`
	Course    string `json:"course"`
	Subject   string `json:"subject"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ConflictPair reports two timetable entries clashing on a room or lecturer.
type ConflictPair struct {
	Timetable1 ConflictEntry `json:"timetable1"`
	Timetable2 ConflictEntry `json:"timetable2"`
}

func (s *gormStore) TimetableWithConflicts(ctx context.Context, courseCode string) ([]model.TimetableEntry, []ConflictPair, error) {
	query := s.db.WithContext(ctx).Preload("Lecturers")
	if courseCode != "" {
		query = query.Where("course_code = ?", courseCode)
	}

	var entries []model.TimetableEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load timetable entries: %w", err)
	}

	var rooms []model.Room
	if err := s.db.WithContext(ctx).Find(&rooms).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	roomIDs := make(map[int64]bool, len(rooms))
	for _, r := range rooms {
		roomIDs[r.ID] = true
	}

	detectorEntries := make([]schedule.Entry, 0, len(entries))
	for _, e := range entries {
		window, err := schedule.ParseInterval(e.StartTime, e.EndTime)
		if err != nil {
			log.Printf("timetable entry %d has unparsable window %s-%s, excluded from conflict detection: %v",
				e.ID, e.StartTime, e.EndTime, err)
			continue
		}

		roomID := e.RoomID
		if !roomIDs[roomID] {
			// Room was deleted from under the entry: skip room-based
			// comparisons but keep checking lecturer clashes.
			log.Printf("timetable entry %d references missing room %d, skipping room comparisons", e.ID, e.RoomID)
			roomID = 0
		}

		lecturerIDs := make([]int64, 0, len(e.Lecturers))
		for _, l := range e.Lecturers {
			lecturerIDs = append(lecturerIDs, l.ID)
		}

		detectorEntries = append(detectorEntries, schedule.Entry{
			ID:          e.ID,
			CourseCode:  e.CourseCode,
			Subject:     e.Subject,
			RoomID:      roomID,
			Day:         e.Day,
			Window:      window,
			LecturerIDs: lecturerIDs,
		})
	}

	conflicts := schedule.DetectConflicts(detectorEntries)
	pairs := make([]ConflictPair, 0, len(conflicts))
	for _, c := range conflicts {
		pairs = append(pairs, ConflictPair{
			Timetable1: summarize(c.First),
			Timetable2: summarize(c.Second),
		})
	}
	return entries, pairs, nil
}

func summarize(e schedule.Entry) ConflictEntry {
	return ConflictEntry{
		ID:        e.ID,
		Course:    e.CourseCode,
		Subject:   e.Subject,
		Day:       e.Day,
		StartTime: schedule.FormatClock(e.Window.Start),
		EndTime:   schedule.FormatClock(e.Window.End),
	}
}

func (s *gormStore) DueReminders(ctx context.Context, now time.Time, lead time.Duration) ([]model.Booking, error) {
	horizon := now.Add(lead)

	var candidates []model.Booking
	if err := s.db.WithContext(ctx).
		Where("status = ? AND reminder_sent_at IS NULL AND date IN ?",
			model.BookingConfirmed,
			[]string{now.Format("2006-01-02"), horizon.Format("2006-01-02")}).
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to load reminder candidates: %w", err)
	}

	due := make([]model.Booking, 0, len(candidates))
	for _, b := range candidates {
		start, err := time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.StartTime, now.Location())
		if err != nil {
			log.Printf("booking %d has unparsable start %s %s: %v", b.ID, b.Date, b.StartTime, err)
			continue
		}
		if start.After(now) && !start.After(horizon) {
			due = append(due, b)
		}
	}
	return due, nil
}

func (s *gormStore) MarkReminderSent(ctx context.Context, bookingID int64, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", bookingID).
		Update("reminder_sent_at", at).Error
}
