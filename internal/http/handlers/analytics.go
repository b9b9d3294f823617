package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fitlistic/fitlistic/internal/analytics"
	"github.com/fitlistic/fitlistic/internal/cache"
	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/domain/wellbeing"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/fitlistic/fitlistic/internal/utils"
	"github.com/gin-gonic/gin"
)

const overviewCacheTTL = 60 * time.Second

type WellbeingSeriesStore interface {
	Series(ctx context.Context, userID string, filter wellbeing.SeriesFilter) ([]wellbeing.Score, error)
}

type AnalyticsHandler struct {
	svc       *analytics.Service
	wellbeing WellbeingSeriesStore
	redis     *cache.Redis
}

func NewAnalyticsHandler(svc *analytics.Service, wellbeingStore WellbeingSeriesStore, redis *cache.Redis) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, wellbeing: wellbeingStore, redis: redis}
}

// Overview serves the per-user dashboard aggregate, cached in Redis for a
// minute. Writes invalidate the key, so the cache only absorbs reads.
func (h *AnalyticsHandler) Overview(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	cacheKey := utils.BuildAnalyticsOverviewCacheKey(userID)

	if h.redis != nil {
		var cached analytics.Overview

		if err := h.redis.GetJSON(cctx, cacheKey, &cached); err == nil {
			ctx.Header("X-Cache", "hit")
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	overview, err := h.svc.BuildOverview(cctx, userID, time.Now())

	if err != nil {
		RespondInternal(ctx, "Could not build analytics overview")
		return
	}

	if h.redis != nil {
		_ = h.redis.SetJSON(cctx, cacheKey, overview, overviewCacheTTL)
	}

	ctx.Header("X-Cache", "miss")
	ctx.JSON(http.StatusOK, overview)
}

func (h *AnalyticsHandler) Wellbeing(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	filter := wellbeing.SeriesFilter{}

	if raw := ctx.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)

		if err != nil {
			RespondBadRequest(ctx, "from must be YYYY-MM-DD", nil)
			return
		}

		filter.From = &t
	}

	if raw := ctx.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)

		if err != nil {
			RespondBadRequest(ctx, "to must be YYYY-MM-DD", nil)
			return
		}

		end := t.AddDate(0, 0, 1)
		filter.To = &end
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	scores, err := h.wellbeing.Series(cctx, userID, filter)

	if err != nil {
		RespondInternal(ctx, "Could not load wellbeing series")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"series": scores,
		"stats":  analytics.SummarizeWellbeing(scores),
	})
}
