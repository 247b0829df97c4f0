package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitflow/habitflow/config"
	"github.com/habitflow/habitflow/controllers"
	"github.com/habitflow/habitflow/middleware"
	"github.com/habitflow/habitflow/notify"
	"github.com/habitflow/habitflow/remote"
	"github.com/habitflow/habitflow/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, svc *remote.Service, sessions *controllers.Sessions, push *notify.PushSender) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db, svc, sessions)
	habitController := controllers.NewHabitController(sessions)
	analyticsController := controllers.NewAnalyticsController(sessions)
	achievementController := controllers.NewAchievementController(svc)
	profileController := controllers.NewProfileController(svc, sessions)
	notificationController := controllers.NewNotificationController(sessions, push)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	habitsGroup := api.Group("/habits", middleware.AuthRequired())
	habitsGroup.GET("", habitController.List)
	habitsGroup.POST("", habitController.Create)
	habitsGroup.PATCH("/:id", habitController.Update)
	habitsGroup.DELETE("/:id", habitController.Delete)
	habitsGroup.POST("/:id/toggle", habitController.Toggle)
	habitsGroup.POST("/:id/complete", habitController.Complete)
	habitsGroup.DELETE("/:id/complete", habitController.Uncomplete)
	habitsGroup.GET("/:id/analytics", analyticsController.ForHabit)

	analyticsGroup := api.Group("/analytics", middleware.AuthRequired())
	analyticsGroup.GET("/dashboard", analyticsController.Dashboard)
	analyticsGroup.GET("/chart", analyticsController.Chart)

	achievementsGroup := api.Group("/achievements", middleware.AuthRequired())
	achievementsGroup.GET("", achievementController.Catalog)
	achievementsGroup.GET("/earned", achievementController.Earned)
	achievementsGroup.GET("/progress", achievementController.Progress)

	profileGroup := api.Group("/profile", middleware.AuthRequired())
	profileGroup.GET("", profileController.Get)
	profileGroup.PATCH("", profileController.Update)

	notificationsGroup := api.Group("/notifications", middleware.AuthRequired())
	notificationsGroup.GET("/scheduled", notificationController.Scheduled)
	notificationsGroup.GET("/recent", notificationController.Recent)
	notificationsGroup.POST("/permission", notificationController.SetPermission)
	notificationsGroup.POST("/test", notificationController.Test)
	notificationsGroup.POST("/actions/complete", notificationController.CompleteAction)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
