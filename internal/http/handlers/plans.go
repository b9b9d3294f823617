package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/domain/plan"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/fitlistic/fitlistic/internal/planner"
	"github.com/gin-gonic/gin"
)

type PlanStore interface {
	SaveActive(ctx context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error)
	GetActive(ctx context.Context, userID string) (plan.WeeklyPlan, error)
	MarkDayCompleted(ctx context.Context, userID, planID, date string, weekStart time.Time) error
	CompletedDays(ctx context.Context, userID string, weekStart time.Time) ([]string, error)
}

type PlansHandler struct {
	store   PlanStore
	planner *planner.Planner
}

func NewPlansHandler(store PlanStore, pl *planner.Planner) *PlansHandler {
	return &PlansHandler{store: store, planner: pl}
}

// Generate builds a fresh weekly plan and makes it the user's active one,
// deactivating any previous plan.
func (h *PlansHandler) Generate(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req plan.GeneratePlanRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	meta, schedule, err := h.planner.GenerateWeeklyPlan(cctx, req, time.Now())

	if err != nil {
		RespondInternal(ctx, "Could not generate plan")
		return
	}

	saved, err := h.store.SaveActive(cctx, plan.WeeklyPlan{
		UserID:   userID,
		Metadata: meta,
		Schedule: schedule,
	})

	if err != nil {
		RespondInternal(ctx, "Could not save plan")
		return
	}

	ctx.JSON(http.StatusCreated, saved)
}

func (h *PlansHandler) GetActive(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.store.GetActive(cctx, userID)

	if err != nil {
		if errors.Is(err, plan.ErrNoActivePlan) {
			RespondNotFound(ctx, "No active plan")
			return
		}

		RespondInternal(ctx, "Could not load plan")
		return
	}

	completed, err := h.store.CompletedDays(cctx, userID, plan.WeekStart(time.Now()))

	if err != nil {
		RespondInternal(ctx, "Could not load plan")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"plan":          p,
		"completedDays": completed,
	})
}

// CompleteDay records one schedule day as done for the current week. A
// second completion of the same day conflicts.
func (h *PlansHandler) CompleteDay(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req plan.CompleteDayRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.store.GetActive(cctx, userID)

	if err != nil {
		if errors.Is(err, plan.ErrNoActivePlan) {
			RespondNotFound(ctx, "No active plan")
			return
		}

		RespondInternal(ctx, "Could not complete day")
		return
	}

	day, err := p.Day(req.Date)

	if errors.Is(err, plan.ErrDayNotInPlan) {
		RespondBadRequest(ctx, "Date is not part of the active plan", nil)
		return
	}

	if day.Type == plan.DayRest {
		RespondBadRequest(ctx, "Rest days cannot be completed", nil)
		return
	}

	err = h.store.MarkDayCompleted(cctx, userID, p.ID, req.Date, plan.WeekStart(time.Now()))

	if err != nil {
		if errors.Is(err, plan.ErrDayAlreadyDone) {
			RespondConflict(ctx, "day_already_completed", "This day was already completed.")
			return
		}

		RespondInternal(ctx, "Could not complete day")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date":      req.Date,
		"completed": true,
	})
}
