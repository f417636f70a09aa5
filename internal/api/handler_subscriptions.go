package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers or refreshes a push subscription for the caller.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := mw.CallerID(c)
	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
		UserID:   userID,
	}

	if err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(&subscription).Error; err != nil {
		respondStoreError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// GetSubscriptions lists the endpoints the caller has registered.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	userID, _ := mw.CallerID(c)

	var subscriptions []model.PushSubscription
	if err := h.store.DB().Where("user_id = ?", userID).Find(&subscriptions).Error; err != nil {
		respondStoreError(c, err)
		return
	}

	endpoints := make([]string, 0, len(subscriptions))
	for _, s := range subscriptions {
		endpoints = append(endpoints, s.Endpoint)
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": endpoints})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := mw.CallerID(c)
	result := h.store.DB().
		Where("endpoint = ? AND user_id = ?", req.Endpoint, userID).
		Delete(&model.PushSubscription{})
	if result.Error != nil {
		respondStoreError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
