package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/schedule"
)

// GetTimetable handles GET /api/timetable/all and GET
// /api/timetable/filter?courseCode=. Conflicts are recomputed on every read.
func (h *Handler) GetTimetable(c *gin.Context) {
	courseCode := c.Query("courseCode")

	entries, conflicts, err := h.store.TimetableWithConflicts(c.Request.Context(), courseCode)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timetables": entries,
		"conflicts":  conflicts,
	})
}

type timetableRequest struct {
	CourseCode  string  `json:"courseCode" binding:"required"`
	Subject     string  `json:"subject" binding:"required"`
	RoomID      int64   `json:"roomId" binding:"required"`
	Day         string  `json:"day" binding:"required"`
	StartTime   string  `json:"startTime" binding:"required"`
	EndTime     string  `json:"endTime" binding:"required"`
	LecturerIDs []int64 `json:"lecturerIds"`
}

// resolve validates the request's references and returns the lecturer rows.
func (h *Handler) resolveTimetableRequest(c *gin.Context, req timetableRequest) ([]model.User, bool) {
	if !model.ValidWeekday(req.Day) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "day must be a weekday name"})
		return nil, false
	}
	if _, err := schedule.ParseInterval(req.StartTime, req.EndTime); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	var room model.Room
	if err := h.store.DB().First(&room, req.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return nil, false
		}
		respondStoreError(c, err)
		return nil, false
	}

	var lecturers []model.User
	if len(req.LecturerIDs) > 0 {
		if err := h.store.DB().Where("role = ?", model.RoleLecturer).Find(&lecturers, req.LecturerIDs).Error; err != nil {
			respondStoreError(c, err)
			return nil, false
		}
		if len(lecturers) != len(req.LecturerIDs) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "one or more lecturers not found"})
			return nil, false
		}
	}
	return lecturers, true
}

// CreateTimetableEntry handles POST /api/timetable.
func (h *Handler) CreateTimetableEntry(c *gin.Context) {
	var req timetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lecturers, ok := h.resolveTimetableRequest(c, req)
	if !ok {
		return
	}

	entry := model.TimetableEntry{
		CourseCode: req.CourseCode,
		Subject:    req.Subject,
		RoomID:     req.RoomID,
		Day:        req.Day,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Lecturers:  lecturers,
	}
	if err := h.store.DB().Create(&entry).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateTimetableEntry handles PUT /api/timetable/:id.
func (h *Handler) UpdateTimetableEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid timetable id"})
		return
	}
	var req timetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lecturers, ok := h.resolveTimetableRequest(c, req)
	if !ok {
		return
	}

	var entry model.TimetableEntry
	if err := h.store.DB().First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "timetable entry not found"})
			return
		}
		respondStoreError(c, err)
		return
	}

	entry.CourseCode = req.CourseCode
	entry.Subject = req.Subject
	entry.RoomID = req.RoomID
	entry.Day = req.Day
	entry.StartTime = req.StartTime
	entry.EndTime = req.EndTime

	err = h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&entry).Association("Lecturers").Replace(lecturers)
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	entry.Lecturers = lecturers
	c.JSON(http.StatusOK, entry)
}

// DeleteTimetableEntry handles DELETE /api/timetable/:id.
func (h *Handler) DeleteTimetableEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid timetable id"})
		return
	}

	err = h.store.DB().Transaction(func(tx *gorm.DB) error {
		var entry model.TimetableEntry
		if err := tx.First(&entry, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&entry).Association("Lecturers").Clear(); err != nil {
			return err
		}
		return tx.Delete(&entry).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "timetable entry not found"})
		return
	}
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
