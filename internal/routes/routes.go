package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lokalo/lokalo-backend/internal/config"
	"github.com/lokalo/lokalo-backend/internal/handler"
	"github.com/lokalo/lokalo-backend/internal/middleware"
	"github.com/lokalo/lokalo-backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

// Setup configures all API routes under /api/v1 plus the WebSocket endpoint.
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	listingHandler *handler.ListingHandler,
	favoriteHandler *handler.FavoriteHandler,
	messageHandler *handler.MessageHandler,
	notificationHandler *handler.NotificationHandler,
	mediaHandler *handler.MediaHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	api := router.Group("/api/v1")
	authRequired := middleware.JWTAuth(jwtManager)

	// Authentication
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", middleware.RateLimit(redisClient, middleware.RateLimitConfig{
		Requests:  10,
		WindowSec: 60,
		KeyPrefix: "lokalo:ratelimit:login:",
		Message:   "Too many login attempts, please try again shortly.",
	}), authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.GET("/me", authRequired, authHandler.Me)
	auth.DELETE("/me", authRequired, authHandler.DeleteAccount)

	// Listings
	listings := api.Group("/listings")
	listings.GET("", listingHandler.GetList)
	listings.GET("/:id", middleware.OptionalJWTAuth(jwtManager), listingHandler.Get)
	listings.POST("", authRequired, listingHandler.Create)
	listings.PUT("/:id", authRequired, listingHandler.Update)
	listings.PATCH("/:id/status", authRequired, listingHandler.UpdateStatus)
	listings.DELETE("/:id", authRequired, listingHandler.Delete)
	listings.GET("/:id/stats", authRequired, listingHandler.Stats)
	listings.POST("/:id/images", authRequired, mediaHandler.UploadListingImage)
	listings.DELETE("/images/:imageId", authRequired, mediaHandler.DeleteListingImage)

	api.GET("/my/listings", authRequired, listingHandler.GetOwn)

	// Favorites
	favorites := api.Group("/favorites", authRequired)
	favorites.POST("", favoriteHandler.Add)
	favorites.DELETE("/:listingId", favoriteHandler.Remove)
	favorites.GET("", favoriteHandler.GetList)

	// Messaging
	api.POST("/messages", authRequired,
		middleware.RateLimitPerUser(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.WindowSec),
		messageHandler.SendMessage)
	api.GET("/messages/unread-count", authRequired, messageHandler.UnreadCount)
	api.DELETE("/messages/:id", authRequired, messageHandler.DeleteMessage)
	api.GET("/conversations", authRequired, messageHandler.GetConversations)
	api.GET("/conversations/:id/messages", authRequired, messageHandler.GetMessages)

	// Notifications
	notifications := api.Group("/notifications", authRequired)
	notifications.GET("", notificationHandler.GetList)
	notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
	notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
	notifications.DELETE("/:id", notificationHandler.Delete)
	notifications.DELETE("", notificationHandler.ClearAll)

	// Realtime push; the handler authenticates from the token query
	// parameter because browsers cannot set WebSocket headers.
	router.GET("/ws/notifications", wsHandler.Connect)
}
