package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"campus-portal-backend/config"
	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/mw"
	"campus-portal-backend/internal/notification"
	"campus-portal-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, webpushOptions *webpush.Options, pool *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	responseCache := cache.New(cacheTTL, 2*cacheTTL)

	handler := NewHandler(s, cfg, webpushOptions, pool, responseCache)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	caching := mw.Cache(responseCache, cacheTTL)
	auth := mw.Auth([]byte(cfg.Auth.JWTSecret))
	adminOnly := mw.RequireRole(model.RoleAdmin)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", handler.Login)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(auth)
		{
			// Catalogue reads are identical for every caller and safe to cache.
			authed.GET("/rooms", caching, handler.ListRooms)
			authed.GET("/announcements", caching, handler.ListAnnouncements)

			authed.GET("/bookings/available", handler.GetAvailability)
			authed.POST("/bookings", mw.RequireRole(model.RoleStudent, model.RoleLecturer, model.RoleAdmin), handler.CreateBooking)
			authed.GET("/bookings", handler.ListBookings)
			authed.PUT("/bookings/:id/status", handler.UpdateBookingStatus)
			authed.DELETE("/bookings/:id", adminOnly, handler.DeleteBooking)

			authed.GET("/timetable/all", handler.GetTimetable)
			authed.GET("/timetable/filter", handler.GetTimetable)

			authed.GET("/subscriptions", handler.GetSubscriptions)
			authed.PUT("/subscriptions", handler.PutSubscription)
			authed.DELETE("/subscriptions", handler.DeleteSubscription)

			admin := authed.Group("")
			admin.Use(adminOnly)
			{
				admin.POST("/rooms", handler.CreateRoom)
				admin.PUT("/rooms/:id", handler.UpdateRoom)
				admin.DELETE("/rooms/:id", handler.DeleteRoom)
				admin.POST("/rooms/:id/maintenance", handler.AddMaintenance)
				admin.DELETE("/rooms/:id/maintenance/:mid", handler.DeleteMaintenance)
				admin.POST("/rooms/import", handler.ImportRooms)

				admin.POST("/timetable", handler.CreateTimetableEntry)
				admin.PUT("/timetable/:id", handler.UpdateTimetableEntry)
				admin.DELETE("/timetable/:id", handler.DeleteTimetableEntry)
				admin.POST("/timetable/import", handler.ImportTimetable)

				admin.POST("/announcements", handler.CreateAnnouncement)
				admin.PUT("/announcements/:id", handler.UpdateAnnouncement)
				admin.DELETE("/announcements/:id", handler.DeleteAnnouncement)
			}
		}
	}

	return r
}
