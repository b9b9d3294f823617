package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fitlistic/fitlistic/internal/cache"
	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/domain/user"
	"github.com/fitlistic/fitlistic/internal/domain/workout"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/fitlistic/fitlistic/internal/planner"
	"github.com/fitlistic/fitlistic/internal/repo/postgres"
	"github.com/fitlistic/fitlistic/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultWorkoutsLimit = 20
	maxWorkoutsLimit     = 100
)

type WorkoutLogStore interface {
	Create(ctx context.Context, p postgres.CreateLogParams) (workout.Log, error)
	GetByID(ctx context.Context, userID, id string) (workout.Log, error)
	ListCursor(ctx context.Context, userID string, filter workout.ListFilter, afterLoggedAt time.Time, afterID string) ([]workout.Log, bool, error)
	Delete(ctx context.Context, userID, id string) error
}

type WorkoutUserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	IncrementWorkouts(ctx context.Context, id string) error
}

type WorkoutsHandler struct {
	logs  WorkoutLogStore
	users WorkoutUserStore
	redis *cache.Redis
}

func NewWorkoutsHandler(logs WorkoutLogStore, users WorkoutUserStore, redis *cache.Redis) *WorkoutsHandler {
	return &WorkoutsHandler{logs: logs, users: users, redis: redis}
}

func (h *WorkoutsHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req workout.CreateLogRequest

	if !BindJSON(ctx, &req) {
		return
	}

	loggedAt, err := time.Parse("2006-01-02", req.Date)

	if err != nil {
		RespondBadRequest(ctx, "Invalid date", nil)
		return
	}

	if loggedAt.After(time.Now().UTC()) {
		RespondBadRequest(ctx, "Workout date cannot be in the future", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not log workout")
		return
	}

	totalMinutes := 0
	totalCalories := 0
	blocks := make([]workout.ActivityBlock, 0, len(req.Blocks))

	for _, b := range req.Blocks {
		totalMinutes += b.DurationMinutes
		totalCalories += planner.EstimateCalories(b.ActivityType, u.WeightKg, b.DurationMinutes)

		blocks = append(blocks, workout.ActivityBlock{
			ActivityID:      b.ActivityID,
			ActivityType:    b.ActivityType,
			Name:            b.Name,
			DurationMinutes: b.DurationMinutes,
			Note:            b.Note,
		})
	}

	l, err := h.logs.Create(cctx, postgres.CreateLogParams{
		UserID:               userID,
		LoggedAt:             loggedAt,
		WorkoutType:          req.WorkoutType,
		Blocks:               blocks,
		TotalDurationMinutes: totalMinutes,
		TotalCaloriesBurned:  totalCalories,
		Notes:                req.Notes,
		PlanID:               req.PlanID,
	})

	if err != nil {
		RespondInternal(ctx, "Could not log workout")
		return
	}

	_ = h.users.IncrementWorkouts(cctx, userID)

	h.invalidateOverview(cctx, userID)

	ctx.JSON(http.StatusCreated, l)
}

func (h *WorkoutsHandler) List(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	limit := defaultWorkoutsLimit

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 || n > maxWorkoutsLimit {
			RespondBadRequest(ctx, "limit must be between 1 and "+strconv.Itoa(maxWorkoutsLimit), nil)
			return
		}

		limit = n
	}

	var afterLoggedAt time.Time
	var afterID string

	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeWorkoutCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}

		afterLoggedAt = c.LoggedAt
		afterID = c.ID
	}

	filter := workout.ListFilter{Limit: limit}

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

		// inclusive end of day
		end := t.AddDate(0, 0, 1)
		filter.To = &end
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	logs, hasMore, err := h.logs.ListCursor(cctx, userID, filter, afterLoggedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list workouts")
		return
	}

	resp := gin.H{
		"items": logs,
		"count": len(logs),
	}

	if hasMore && len(logs) > 0 {
		last := logs[len(logs)-1]
		next, err := utils.EncodeWorkoutCursor(last.LoggedAt, last.ID)

		if err == nil {
			resp["nextCursor"] = next
		}
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *WorkoutsHandler) GetByID(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "workout id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	l, err := h.logs.GetByID(cctx, userID, id)

	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			RespondNotFound(ctx, "Workout not found")
			return
		}

		RespondInternal(ctx, "Could not fetch workout")
		return
	}

	ctx.JSON(http.StatusOK, l)
}

func (h *WorkoutsHandler) Delete(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "workout id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.logs.Delete(cctx, userID, id)

	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			RespondNotFound(ctx, "Workout not found")
			return
		}

		RespondInternal(ctx, "Could not delete workout")
		return
	}

	h.invalidateOverview(cctx, userID)

	ctx.Status(http.StatusNoContent)
}

// invalidateOverview drops the cached analytics snapshot after any write
// that changes the numbers. Best effort: a miss just means a recompute.
func (h *WorkoutsHandler) invalidateOverview(ctx context.Context, userID string) {
	if h.redis == nil {
		return
	}

	_ = h.redis.Invalidate(ctx, utils.BuildAnalyticsOverviewCacheKey(userID))
}
