package routes

import (
	"net/http"
	"time"

	"homehub/handlers"
	"homehub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers login and account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.Auth.LoginHandler)

		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.Auth.MeHandler)
		api.PATCH("/me", hb.Auth.UpdateMeHandler)
		api.POST("/logout", hb.Auth.LogoutHandler)
		api.PUT("/fcm-token", hb.Auth.UpdateFCMTokenHandler)
		api.POST("/register", middleware.RequireAdmin(), hb.Auth.RegisterHandler)
	}
}

// RegisterUserRoutes registers member management endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
	{
		api.GET("", hb.Users.GetUsersHandler)
		api.GET("/:id", hb.Users.GetUserByIDHandler)
		api.POST("/avatar", hb.Storage.UploadAvatarHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.PATCH("/:id", hb.Users.UpdateUserHandler)
		admin.DELETE("/:id", hb.Users.DeleteUserHandler)
	}
}

// RegisterDeviceRoutes registers device fleet endpoints. Status changes
// are open to every role; the service applies the role policy.
func RegisterDeviceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/devices")
	api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
	{
		api.GET("", hb.Devices.GetDevicesHandler)
		api.GET("/stats", hb.Devices.GetDeviceStatsHandler)
		api.GET("/:id", hb.Devices.GetDeviceByIDHandler)
		api.GET("/:id/status", hb.Devices.GetDeviceStatusHandler)
		api.PATCH("/:id/status", hb.Devices.UpdateDeviceStatusHandler)
		api.POST("/:id/toggle", hb.Devices.ToggleDeviceHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.POST("", hb.Devices.CreateDeviceHandler)
		admin.PATCH("/:id", hb.Devices.UpdateDeviceHandler)
		admin.DELETE("/:id", hb.Devices.DeleteDeviceHandler)
	}
}

// RegisterRequestRoutes registers the control request workflow.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
	{
		api.POST("", hb.Requests.SubmitRequestHandler)
		api.GET("/mine", hb.Requests.GetMyRequestsHandler)
		api.GET("/:id", hb.Requests.GetRequestByIDHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.GET("", hb.Requests.GetRequestsHandler)
		admin.PATCH("/:id", hb.Requests.ResolveRequestHandler)
	}
}

// RegisterRoomRoutes registers room and membership endpoints.
func RegisterRoomRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/rooms")
	api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
	{
		api.GET("", hb.Rooms.GetRoomsHandler)
		api.GET("/:id", hb.Rooms.GetRoomByIDHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.POST("", hb.Rooms.CreateRoomHandler)
		admin.PATCH("/:id", hb.Rooms.UpdateRoomHandler)
		admin.DELETE("/:id", hb.Rooms.DeleteRoomHandler)
	}
}

// RegisterScheduleRoutes registers timed action endpoints (ADMIN only).
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/schedules")
	api.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.RequireAdmin())
	{
		api.GET("", hb.Schedule.GetSchedulesHandler)
		api.GET("/:id", hb.Schedule.GetScheduleByIDHandler)
		api.POST("", hb.Schedule.CreateScheduleHandler)
		api.PATCH("/:id", hb.Schedule.UpdateScheduleHandler)
		api.DELETE("/:id", hb.Schedule.DeleteScheduleHandler)
	}
}

// RegisterLogRoutes registers the activity trail endpoint.
func RegisterLogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/logs")
	api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
	{
		api.GET("", hb.Logs.GetLogsHandler)
	}
}

// RegisterStreamRoute registers the live update WebSocket.
func RegisterStreamRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/stream", middleware.JWTAuthMiddleware(hb.UserRepo), hb.Stream.StreamHandlerFunc)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm HomeHub"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
	RegisterRequestRoutes(r, hb)
	RegisterRoomRoutes(r, hb)
	RegisterScheduleRoutes(r, hb)
	RegisterLogRoutes(r, hb)
	RegisterStreamRoute(r, hb)
	RegisterHealthRoute(r)
}
