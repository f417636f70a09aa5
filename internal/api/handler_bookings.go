package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/mw"
	"campus-portal-backend/internal/notification"
	"campus-portal-backend/internal/schedule"
	"campus-portal-backend/internal/store"
)

type slotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type availabilityResponse struct {
	Room           string         `json:"room"`
	AvailableSlots []slotResponse `json:"availableSlots"`
}

// GetAvailability handles GET /api/bookings/available?room=&date=.
func (h *Handler) GetAvailability(c *gin.Context) {
	roomName := c.Query("room")
	date := c.Query("date")
	if roomName == "" || date == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "room and date query parameters are required"})
		return
	}

	room, slots, err := h.store.AvailableSlots(c.Request.Context(), roomName, date)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{
			StartTime: schedule.FormatClock(s.Start),
			EndTime:   schedule.FormatClock(s.End),
		})
	}
	c.JSON(http.StatusOK, []availabilityResponse{{Room: room.Name, AvailableSlots: out}})
}

type createBookingRequest struct {
	Room      string `json:"room" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	CourseID  *int64 `json:"courseId"`
}

// bookingResponse flattens a booking with its room name for the client.
type bookingResponse struct {
	model.Booking
	Room string `json:"room"`
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := mw.CallerID(c)
	role, _ := mw.CallerRole(c)

	booking, err := h.store.CreateBooking(c.Request.Context(), store.NewBooking{
		RoomName:  req.Room,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		UserID:    userID,
		Role:      role,
		CourseID:  req.CourseID,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.notify(notification.Event{
		UserID: booking.UserID,
		Title:  "Booking request received",
		Body:   fmt.Sprintf("%s on %s, %s-%s (%s)", req.Room, booking.Date, booking.StartTime, booking.EndTime, booking.Status),
	})
	c.JSON(http.StatusCreated, bookingResponse{Booking: booking, Room: req.Room})
}

// ListBookings handles GET /api/bookings. Admins see everything, everyone
// else their own bookings.
func (h *Handler) ListBookings(c *gin.Context) {
	userID, _ := mw.CallerID(c)
	role, _ := mw.CallerRole(c)

	query := h.store.DB().Preload("Room").Order("date, start_time")
	if role != model.RoleAdmin {
		query = query.Where("user_id = ?", userID)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var bookings []model.Booking
	if err := query.Find(&bookings).Error; err != nil {
		respondStoreError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingResponse{Booking: b, Room: b.Room.Name})
	}
	c.JSON(http.StatusOK, out)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus handles PUT /api/bookings/:id/status.
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.ValidBookingStatus(req.Status) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status %q", req.Status)})
		return
	}

	userID, _ := mw.CallerID(c)
	role, _ := mw.CallerRole(c)

	booking, err := h.store.UpdateBookingStatus(c.Request.Context(), id, model.BookingStatus(req.Status), userID, role)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.notify(notification.Event{
		UserID: booking.UserID,
		Title:  fmt.Sprintf("Booking %s", booking.Status),
		Body:   fmt.Sprintf("Your booking on %s, %s-%s is now %s", booking.Date, booking.StartTime, booking.EndTime, booking.Status),
	})
	c.JSON(http.StatusOK, booking)
}

// DeleteBooking handles DELETE /api/bookings/:id (admin removal).
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var booking model.Booking
	if err := h.store.DB().First(&booking, id).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if err := h.store.DB().Delete(&model.Booking{}, id).Error; err != nil {
		respondStoreError(c, err)
		return
	}

	h.notify(notification.Event{
		UserID: booking.UserID,
		Title:  "Booking removed",
		Body:   fmt.Sprintf("Your booking on %s, %s-%s was removed by an administrator", booking.Date, booking.StartTime, booking.EndTime),
	})
	c.Status(http.StatusNoContent)
}
