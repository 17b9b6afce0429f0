package transport

import (
	"github.com/gin-gonic/gin"

	"github.com/ds-lab/eventmanager/internal/transport/middleware"
	"github.com/ds-lab/eventmanager/pkg/token"
)

func InitRoutes(eventHandler *EventHandler, attendeeHandler *AttendeeHandler, authHandler *AuthHandler, tokens *token.Manager) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public event routes
		events := api.Group("/events")
		{
			events.GET("", eventHandler.ListEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.POST("/:id/attendees", attendeeHandler.Register)
			events.GET("/:id/attendees", attendeeHandler.ListAttendees)
		}

		// Administrative routes
		admin := api.Group("/events", middleware.Auth(tokens))
		{
			admin.POST("", eventHandler.CreateEvent)
			admin.PUT("/:id", eventHandler.UpdateEvent)
			admin.PUT("/:id/attendees/:attendee_id/checkin", attendeeHandler.CheckIn)
			admin.POST("/:id/attendees/bulk-checkin", attendeeHandler.BulkCheckin)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
