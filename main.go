package main

import (
	"context"

	"github.com/habitflow/habitflow/config"
	"github.com/habitflow/habitflow/controllers"
	"github.com/habitflow/habitflow/models"
	"github.com/habitflow/habitflow/notify"
	"github.com/habitflow/habitflow/remote"
	"github.com/habitflow/habitflow/routes"
	"github.com/habitflow/habitflow/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Habit{},
		&models.HabitCompletion{},
		&models.HabitStreak{},
		&models.UserProfile{},
		&models.Achievement{},
		&models.UserAchievement{},
	)

	svc := remote.NewService(db)
	if err := svc.EnsureAchievementCatalog(context.Background()); err != nil {
		utils.Sugar.Warnf("achievement catalog seed failed: %v", err)
	}

	push := notify.NewPushSender(utils.Sugar, 0)
	sessions := controllers.NewSessions(svc, push)

	r := routes.SetupRouter(db, svc, sessions, push)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
