package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"campus-portal-backend/config"
	"campus-portal-backend/internal/api"
	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/notification"
	"campus-portal-backend/internal/schedule"
	"campus-portal-backend/internal/store"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	tokens map[string]string // role -> bearer token
}

func setupEnv(t *testing.T, name string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(
		&model.User{}, &model.Room{}, &model.MaintenancePeriod{}, &model.Course{},
		&model.Booking{}, &model.TimetableEntry{}, &model.Announcement{}, &model.PushSubscription{},
	))

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "integration-test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 60
	cfg.Booking.OpenTime = "08:00"
	cfg.Booking.CloseTime = "22:00"
	cfg.Booking.MinSlotMinutes = 30
	cfg.Booking.DefaultStatus = "pending"
	cfg.WorkerPool.Size = 1

	appStore := store.NewGormStore(testDB, store.Policy{
		Window:         schedule.Interval{Start: 480, End: 1320},
		MinSlotMinutes: 30,
		DefaultStatus:  model.BookingPending,
	})
	// The pool is never started: dispatched events stay queued, bookings
	// must not depend on delivery.
	pool := notification.NewWorkerPool(1, testDB, &webpush.Options{})

	router := api.NewRouter(cfg, appStore, &webpush.Options{VAPIDPublicKey: "test-key"}, pool)

	env := &testEnv{router: router, db: testDB, tokens: map[string]string{}}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	for _, u := range []model.User{
		{Email: "admin@campus.example", Name: "Admin", Role: model.RoleAdmin, PasswordHash: string(hash)},
		{Email: "lecturer@campus.example", Name: "Dr. Finch", Role: model.RoleLecturer, PasswordHash: string(hash)},
		{Email: "student@campus.example", Name: "Sam Student", Role: model.RoleStudent, PasswordHash: string(hash)},
	} {
		require.NoError(t, testDB.Create(&u).Error)
		env.tokens[string(u.Role)] = env.login(t, u.Email)
	}
	return env
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doCSV(t *testing.T, path, token, csv string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// TestBookingLifecycle walks a booking from availability lookup through
// admission, confirmation and cancellation.
func TestBookingLifecycle(t *testing.T) {
	env := setupEnv(t, "lifecycle")
	admin := env.tokens["admin"]
	student := env.tokens["student"]

	// Admin creates a room with a maintenance day.
	w := env.do(t, http.MethodPost, "/api/rooms", admin, gin.H{"name": "Lab1", "capacity": 30})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var room model.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/maintenance", room.ID), admin,
		gin.H{"startDate": "2025-06-01", "endDate": "2025-06-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("maintenance day has no availability", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/bookings/available?room=Lab1&date=2025-06-01", student, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp []struct {
			Room           string `json:"room"`
			AvailableSlots []struct {
				StartTime string `json:"startTime"`
				EndTime   string `json:"endTime"`
			} `json:"availableSlots"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Lab1", resp[0].Room)
		assert.Empty(t, resp[0].AvailableSlots)
	})

	t.Run("booking on maintenance day is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/bookings", student,
			gin.H{"room": "Lab1", "date": "2025-06-01", "startTime": "09:00", "endTime": "10:00"})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("open day shows the full operating window", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/bookings/available?room=Lab1&date=2025-06-02", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"startTime":"08:00"`)
		assert.Contains(t, w.Body.String(), `"endTime":"22:00"`)
	})

	var bookingID int64
	t.Run("student books a free slot", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/bookings", student,
			gin.H{"room": "Lab1", "date": "2025-06-02", "startTime": "09:00", "endTime": "10:00"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var b model.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Equal(t, model.BookingPending, b.Status)
		assert.NotEmpty(t, b.Reference)
		bookingID = b.ID
	})

	t.Run("overlapping booking is rejected with conflict", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/bookings", student,
			gin.H{"room": "Lab1", "date": "2025-06-02", "startTime": "09:30", "endTime": "10:30"})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("boundary-touching booking is admitted", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/bookings", student,
			gin.H{"room": "Lab1", "date": "2025-06-02", "startTime": "10:00", "endTime": "11:00"})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("availability excludes the booked windows", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/bookings/available?room=Lab1&date=2025-06-02", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `{"startTime":"08:00","endTime":"09:00"}`)
		assert.Contains(t, w.Body.String(), `{"startTime":"11:00","endTime":"22:00"}`)
		assert.NotContains(t, w.Body.String(), `{"startTime":"09:00"`)
	})

	t.Run("student cannot confirm a booking", func(t *testing.T) {
		w := env.do(t, http.MethodPut, fmt.Sprintf("/api/bookings/%d/status", bookingID), student,
			gin.H{"status": "confirmed"})
		assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})

	t.Run("admin confirms, owner cancels, cancelled is terminal", func(t *testing.T) {
		w := env.do(t, http.MethodPut, fmt.Sprintf("/api/bookings/%d/status", bookingID), admin,
			gin.H{"status": "confirmed"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(t, http.MethodPut, fmt.Sprintf("/api/bookings/%d/status", bookingID), student,
			gin.H{"status": "cancelled"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(t, http.MethodPut, fmt.Sprintf("/api/bookings/%d/status", bookingID), admin,
			gin.H{"status": "confirmed"})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("cancelled slot is bookable again", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/bookings", student,
			gin.H{"room": "Lab1", "date": "2025-06-02", "startTime": "09:00", "endTime": "10:00"})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("unknown room yields not found", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/bookings/available?room=Ghost&date=2025-06-02", student, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLecturerBookingRequiresCourse(t *testing.T) {
	env := setupEnv(t, "lecturercourse")
	admin := env.tokens["admin"]
	lecturer := env.tokens["lecturer"]

	w := env.do(t, http.MethodPost, "/api/rooms", admin, gin.H{"name": "R2", "capacity": 20})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, env.db.Create(&model.Course{Code: "CS101", Name: "Algorithms"}).Error)

	w = env.do(t, http.MethodPost, "/api/bookings", lecturer,
		gin.H{"room": "R2", "date": "2025-06-02", "startTime": "09:00", "endTime": "10:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var course model.Course
	require.NoError(t, env.db.Where("code = ?", "CS101").First(&course).Error)
	w = env.do(t, http.MethodPost, "/api/bookings", lecturer,
		gin.H{"room": "R2", "date": "2025-06-02", "startTime": "09:00", "endTime": "10:00", "courseId": course.ID})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestTimetableConflictsOverHTTP(t *testing.T) {
	env := setupEnv(t, "timetablehttp")
	admin := env.tokens["admin"]
	student := env.tokens["student"]

	w := env.do(t, http.MethodPost, "/api/rooms", admin, gin.H{"name": "R1", "capacity": 60})
	require.Equal(t, http.StatusCreated, w.Code)
	var room model.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))

	mkEntry := func(code, subject, start, end string) int64 {
		w := env.do(t, http.MethodPost, "/api/timetable", admin, gin.H{
			"courseCode": code, "subject": subject, "roomId": room.ID,
			"day": "Monday", "startTime": start, "endTime": end,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var e model.TimetableEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		return e.ID
	}

	a := mkEntry("CS101", "Algorithms", "09:00", "10:30")
	b := mkEntry("CS102", "Databases", "10:00", "11:00")
	mkEntry("CS103", "Networks", "10:30", "11:30")

	w = env.do(t, http.MethodGet, "/api/timetable/all", student, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Timetables []model.TimetableEntry `json:"timetables"`
		Conflicts  []store.ConflictPair   `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Timetables, 3)
	require.Len(t, resp.Conflicts, 2, "A-B and B-C clash, A-C only touch")
	assert.Equal(t, a, resp.Conflicts[0].Timetable1.ID)
	assert.Equal(t, b, resp.Conflicts[0].Timetable2.ID)

	t.Run("filter narrows to one course", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/timetable/filter?courseCode=CS101", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var filtered struct {
			Timetables []model.TimetableEntry `json:"timetables"`
			Conflicts  []store.ConflictPair   `json:"conflicts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
		require.Len(t, filtered.Timetables, 1)
		assert.Empty(t, filtered.Conflicts)
	})

	t.Run("students cannot mutate the timetable", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/timetable", student, gin.H{
			"courseCode": "CS999", "subject": "Hacking", "roomId": room.ID,
			"day": "Monday", "startTime": "09:00", "endTime": "10:00",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCSVImportsOverHTTP(t *testing.T) {
	env := setupEnv(t, "importhttp")
	admin := env.tokens["admin"]
	student := env.tokens["student"]

	t.Run("room import is admin-only", func(t *testing.T) {
		w := env.doCSV(t, "/api/rooms/import", student, "name,capacity\nLabX,10\n")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	w := env.doCSV(t, "/api/rooms/import", admin, "name,capacity\nLabX,10\nLabY,oops\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"imported":1`)
	assert.Contains(t, w.Body.String(), `"skipped":1`)

	csv := strings.Join([]string{
		"course_code,subject,room,day,start_time,end_time,lecturers",
		"CS101,Algorithms,LabX,Monday,09:00,10:30,lecturer@campus.example",
	}, "\n")
	w = env.doCSV(t, "/api/timetable/import", admin, csv)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"imported":1`)

	var entry model.TimetableEntry
	require.NoError(t, env.db.Preload("Lecturers").Where("course_code = ?", "CS101").First(&entry).Error)
	require.Len(t, entry.Lecturers, 1)
	assert.Equal(t, "lecturer@campus.example", entry.Lecturers[0].Email)
}

func TestAuthAndSubscriptions(t *testing.T) {
	env := setupEnv(t, "authsubs")
	student := env.tokens["student"]

	t.Run("requests without a token are rejected", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/rooms", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad credentials are rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/login", "",
			gin.H{"email": "student@campus.example", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("vapid key is public", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/vapid_public_key", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "test-key")
	})

	t.Run("subscription round trip", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/subscriptions", student,
			gin.H{"endpoint": "https://push.example/abc", "p256dh": "k", "auth": "a"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = env.do(t, http.MethodGet, "/api/subscriptions", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "https://push.example/abc")

		w = env.do(t, http.MethodDelete, "/api/subscriptions", student,
			gin.H{"endpoint": "https://push.example/abc"})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(t, http.MethodGet, "/api/subscriptions", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "https://push.example/abc")
	})
}
