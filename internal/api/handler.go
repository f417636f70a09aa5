package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"campus-portal-backend/config"
	"campus-portal-backend/internal/mw"
	"campus-portal-backend/internal/notification"
	"campus-portal-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	cfg     *config.Config
	webpush *webpush.Options
	pool    *notification.WorkerPool
	cache   *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, pool *notification.WorkerPool, responseCache *cache.Cache) *Handler {
	return &Handler{
		store:   s,
		cfg:     cfg,
		webpush: webpushOptions,
		pool:    pool,
		cache:   responseCache,
	}
}

// respondStoreError maps the store's sentinel errors onto HTTP statuses.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// invalidateCache flushes the read cache after a catalogue mutation.
func (h *Handler) invalidateCache() {
	if h.cache != nil {
		mw.Invalidate(h.cache)
	}
}

// notify queues a push event if the worker pool is configured.
func (h *Handler) notify(ev notification.Event) {
	if h.pool != nil {
		h.pool.Dispatch(ev)
	}
}
