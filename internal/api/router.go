package api

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"househunt/server/internal/api/handlers"
	"househunt/server/internal/api/middleware"
	"househunt/server/internal/config"
	"househunt/server/internal/services"
	"househunt/server/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, store storage.Storage, taskClient handlers.ITaskClient) *gin.Engine {
	// Initialize services needed by API handlers
	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db)
	bookingService := services.NewBookingService(db)

	userHandler := handlers.NewUserHandler(cfg, userService, propertyService, bookingService)
	ownerHandler := handlers.NewOwnerHandler(propertyService, bookingService, store, taskClient)
	adminHandler := handlers.NewAdminHandler(userService, propertyService, bookingService)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	// Uploaded images are served straight off disk; the S3 backend serves
	// from the bucket URL instead.
	if cfg.StorageBackend == "local" {
		r.Static("/uploads", cfg.UploadDir)
	}

	authRequired := middleware.AuthMiddleware(cfg.JwtSecret)

	user := r.Group("/api/user")
	{
		user.POST("/register", userHandler.Register)
		user.POST("/login", userHandler.Login)
		user.POST("/forgotpassword", userHandler.ForgotPassword)
		user.GET("/getuserdata", authRequired, userHandler.GetUserData)
		user.GET("/getallproperties", userHandler.GetAllProperties)
		// Express routed case-insensitively; older dashboard builds still
		// request the camelCase path.
		user.GET("/getAllProperties", userHandler.GetAllProperties)
		user.POST("/bookinghandle/:propertyid", authRequired, userHandler.BookProperty)
		user.GET("/getallbookings", authRequired, userHandler.GetMyBookings)
	}

	owner := r.Group("/api/owner")
	owner.Use(authRequired, middleware.OwnerMiddleware(userService))
	{
		owner.POST("/postproperty", ownerHandler.PostProperty)
		owner.GET("/getallproperties", ownerHandler.GetMyProperties)
		owner.GET("/getallbookings", ownerHandler.GetBookings)
		owner.POST("/handlebookingstatus", ownerHandler.HandleBookingStatus)
		owner.PATCH("/updateproperty/:propertyid", ownerHandler.UpdateProperty)
		owner.DELETE("/deleteproperty/:propertyid", ownerHandler.DeleteProperty)
	}

	admin := r.Group("/api/admin")
	admin.Use(authRequired, middleware.AdminMiddleware(userService))
	{
		admin.GET("/getallusers", adminHandler.GetAllUsers)
		admin.POST("/handlestatus", adminHandler.HandleStatus)
		admin.GET("/getallproperties", adminHandler.GetAllProperties)
		admin.GET("/getallbookings", adminHandler.GetAllBookings)
	}

	return r
}
