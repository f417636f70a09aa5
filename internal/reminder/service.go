package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"campus-portal-backend/config"
	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/notification"
	"campus-portal-backend/internal/store"
)

// Service periodically notifies booking owners shortly before their confirmed
// booking starts. Each booking is reminded at most once.
type Service struct {
	cfg   *config.Config
	store store.Store
	pool  *notification.WorkerPool
	now   func() time.Time
}

// NewService creates a reminder service dispatching through the given pool.
func NewService(cfg *config.Config, s store.Store, pool *notification.WorkerPool) *Service {
	return &Service{cfg: cfg, store: s, pool: pool, now: time.Now}
}

// Run starts the reminder loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Reminder.Enabled {
		log.Println("reminder service is disabled, not starting")
		return
	}
	log.Println("starting reminder service...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Reminder.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("reminder service shutting down")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Reminder.Interval)
		}
	}
}

// SweepOnce performs a single reminder pass.
func (s *Service) SweepOnce(ctx context.Context) {
	now := s.now()
	lead := time.Duration(s.cfg.Reminder.LeadMinutes) * time.Minute

	due, err := s.store.DueReminders(ctx, now, lead)
	if err != nil {
		log.Printf("reminder sweep failed: %v", err)
		return
	}

	for _, booking := range due {
		s.pool.Dispatch(notification.Event{
			UserID: booking.UserID,
			Title:  "Upcoming booking",
			Body:   bookingSummary(s.store, booking),
		})
		if err := s.store.MarkReminderSent(ctx, booking.ID, now); err != nil {
			log.Printf("failed to mark reminder sent for booking %d: %v", booking.ID, err)
		}
	}
	if len(due) > 0 {
		log.Printf("dispatched %d booking reminders", len(due))
	}
}

func bookingSummary(s store.Store, b model.Booking) string {
	label := fmt.Sprintf("room %d", b.RoomID)
	var room model.Room
	if err := s.DB().Select("name").First(&room, b.RoomID).Error; err == nil && room.Name != "" {
		label = room.Name
	}
	return fmt.Sprintf("%s starts at %s on %s", label, b.StartTime, b.Date)
}
