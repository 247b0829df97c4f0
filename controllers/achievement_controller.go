package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitflow/habitflow/achievements"
	"github.com/habitflow/habitflow/middleware"
	"github.com/habitflow/habitflow/remote"
	"github.com/habitflow/habitflow/utils"
)

const achievementCatalogCacheKey = "cache:achievements:catalog"

// AchievementController serves the achievement catalog and per-user progress.
type AchievementController struct {
	svc *remote.Service
}

// NewAchievementController creates an AchievementController.
func NewAchievementController(svc *remote.Service) *AchievementController {
	return &AchievementController{svc: svc}
}

// Catalog returns all active achievement definitions. The catalog changes
// rarely so it is served from cache when possible.
func (a *AchievementController) Catalog(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(achievementCatalogCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	catalog, err := a.svc.ListAchievements(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load achievements")
		return
	}

	utils.Success(ctx, catalog)
	utils.CacheSetJSON(achievementCatalogCacheKey, utils.JSONResponse{
		Code:    0,
		Message: "success",
		Data:    catalog,
	}, 10*time.Minute)
}

// Earned returns the achievements the user has unlocked, newest first.
func (a *AchievementController) Earned(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	earned, err := a.svc.ListUserAchievements(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load earned achievements")
		return
	}
	utils.Success(ctx, gin.H{
		"items":        earned,
		"total_points": achievements.TotalPoints(earned),
		"recent":       achievements.RecentEarned(earned, 5),
	})
}

// Progress joins the catalog with the user's stats into per-achievement
// progress entries, grouped by achievement type.
func (a *AchievementController) Progress(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	rctx := ctx.Request.Context()

	catalog, err := a.svc.ListAchievements(rctx)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load achievements")
		return
	}
	earned, err := a.svc.ListUserAchievements(rctx, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load earned achievements")
		return
	}
	stats, err := a.svc.UserStats(rctx, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to compute user stats")
		return
	}

	entries := achievements.Progress(catalog, earned, stats)
	utils.Success(ctx, gin.H{
		"entries": entries,
		"groups":  achievements.GroupByType(entries),
		"stats":   stats,
	})
}
