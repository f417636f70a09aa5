package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/mw"
)

// ListAnnouncements handles GET /api/announcements.
func (h *Handler) ListAnnouncements(c *gin.Context) {
	var announcements []model.Announcement
	if err := h.store.DB().Order("created_at DESC").Find(&announcements).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

type announcementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// CreateAnnouncement handles POST /api/announcements.
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authorID, _ := mw.CallerID(c)
	announcement := model.Announcement{Title: req.Title, Body: req.Body, AuthorID: authorID}
	if err := h.store.DB().Create(&announcement).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	h.invalidateCache()
	c.JSON(http.StatusCreated, announcement)
}

// UpdateAnnouncement handles PUT /api/announcements/:id.
func (h *Handler) UpdateAnnouncement(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var announcement model.Announcement
	if err := h.store.DB().First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
			return
		}
		respondStoreError(c, err)
		return
	}

	announcement.Title = req.Title
	announcement.Body = req.Body
	if err := h.store.DB().Save(&announcement).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	h.invalidateCache()
	c.JSON(http.StatusOK, announcement)
}

// DeleteAnnouncement handles DELETE /api/announcements/:id.
func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}

	result := h.store.DB().Delete(&model.Announcement{}, id)
	if result.Error != nil {
		respondStoreError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
		return
	}
	h.invalidateCache()
	c.Status(http.StatusNoContent)
}
