package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"campus-portal-backend/config"
	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/notification"
	"campus-portal-backend/internal/schedule"
	"campus-portal-backend/internal/store"
)

func setup(t *testing.T) (*Service, *gorm.DB, *notification.WorkerPool) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:remindertest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Room{}, &model.Booking{}, &model.PushSubscription{}))

	cfg := &config.Config{}
	cfg.Reminder.Enabled = true
	cfg.Reminder.LeadMinutes = 30

	appStore := store.NewGormStore(db, store.Policy{
		Window:         schedule.Interval{Start: 480, End: 1320},
		MinSlotMinutes: 30,
		DefaultStatus:  model.BookingPending,
	})
	pool := notification.NewWorkerPool(1, db, &webpush.Options{})

	svc := NewService(cfg, appStore, pool)
	return svc, db, pool
}

func TestSweepOnce(t *testing.T) {
	svc, db, pool := setup(t)

	room := model.Room{Name: "Lab1", Capacity: 10}
	require.NoError(t, db.Create(&room).Error)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	booking := model.Booking{
		Reference: "rem-1", RoomID: room.ID, Date: "2025-06-02",
		StartTime: "09:20", EndTime: "10:00", UserID: 5, Status: model.BookingConfirmed,
	}
	require.NoError(t, db.Create(&booking).Error)

	// The worker pool is not started, so dispatched events stay queued.
	svc.SweepOnce(context.Background())

	select {
	case ev := <-pool.Jobs():
		assert.Equal(t, int64(5), ev.UserID)
		assert.Equal(t, "Upcoming booking", ev.Title)
		assert.Equal(t, fmt.Sprintf("%s starts at %s on %s", "Lab1", "09:20", "2025-06-02"), ev.Body)
	default:
		t.Fatal("expected a reminder event to be dispatched")
	}

	// The booking is marked and never reminded twice.
	var updated model.Booking
	require.NoError(t, db.First(&updated, booking.ID).Error)
	assert.NotNil(t, updated.ReminderSentAt)

	svc.SweepOnce(context.Background())
	select {
	case <-pool.Jobs():
		t.Fatal("booking must not be reminded twice")
	default:
	}
}
