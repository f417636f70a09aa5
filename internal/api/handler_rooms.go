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

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	var rooms []model.Room
	if err := h.store.DB().Preload("Maintenance").Order("name").Find(&rooms).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

type roomRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
}

// CreateRoom handles POST /api/rooms.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := model.Room{Name: req.Name, Capacity: req.Capacity}
	if err := h.store.DB().Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "room name already exists"})
			return
		}
		respondStoreError(c, err)
		return
	}
	h.invalidateCache()
	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /api/rooms/:id.
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var room model.Room
	if err := h.store.DB().First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		respondStoreError(c, err)
		return
	}

	room.Name = req.Name
	room.Capacity = req.Capacity
	if err := h.store.DB().Save(&room).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	h.invalidateCache()
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/rooms/:id. Maintenance periods go with the
// room; timetable entries referencing it become dangling and are skipped by
// the conflict detector.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	err = h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&model.MaintenancePeriod{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Room{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		respondStoreError(c, err)
		return
	}
	h.invalidateCache()
	c.Status(http.StatusNoContent)
}

type maintenanceRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

// AddMaintenance handles POST /api/rooms/:id/maintenance.
func (h *Handler) AddMaintenance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := schedule.ParseDate(req.EndDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if end < start {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "endDate must not precede startDate"})
		return
	}

	var room model.Room
	if err := h.store.DB().First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		respondStoreError(c, err)
		return
	}

	period := model.MaintenancePeriod{RoomID: room.ID, StartDate: start, EndDate: end}
	if err := h.store.DB().Create(&period).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	h.invalidateCache()
	c.JSON(http.StatusCreated, period)
}

// DeleteMaintenance handles DELETE /api/rooms/:id/maintenance/:mid.
func (h *Handler) DeleteMaintenance(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	mid, err := strconv.ParseInt(c.Param("mid"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid maintenance id"})
		return
	}

	result := h.store.DB().Where("room_id = ?", roomID).Delete(&model.MaintenancePeriod{}, mid)
	if result.Error != nil {
		respondStoreError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "maintenance period not found"})
		return
	}
	h.invalidateCache()
	c.Status(http.StatusNoContent)
}
