package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/domain/wellbeing"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type WellbeingStore interface {
	Create(ctx context.Context, userID string, score int, notes string) (wellbeing.Score, error)
	Series(ctx context.Context, userID string, filter wellbeing.SeriesFilter) ([]wellbeing.Score, error)
	Latest(ctx context.Context, userID string) (wellbeing.Score, error)
	HasEntryToday(ctx context.Context, userID string, now time.Time) (bool, error)
}

type WellbeingHandler struct {
	store WellbeingStore
}

func NewWellbeingHandler(store WellbeingStore) *WellbeingHandler {
	return &WellbeingHandler{store: store}
}

func (h *WellbeingHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req wellbeing.CreateScoreRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	score, err := h.store.Create(cctx, userID, req.Score, req.Notes)

	if err != nil {
		if errors.Is(err, wellbeing.ErrAlreadyLoggedToday) {
			RespondConflict(ctx, "already_logged_today", "A wellbeing score was already logged today.")
			return
		}

		RespondInternal(ctx, "Could not log wellbeing score")
		return
	}

	ctx.JSON(http.StatusCreated, score)
}

func (h *WellbeingHandler) List(ctx *gin.Context) {
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

	scores, err := h.store.Series(cctx, userID, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list wellbeing scores")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": scores,
		"count": len(scores),
	})
}

// Today tells the client whether the daily check-in is still open.
func (h *WellbeingHandler) Today(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	logged, err := h.store.HasEntryToday(cctx, userID, time.Now())

	if err != nil {
		RespondInternal(ctx, "Could not check today's wellbeing entry")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"loggedToday": logged})
}

func (h *WellbeingHandler) Latest(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	score, err := h.store.Latest(cctx, userID)

	if err != nil {
		if errors.Is(err, wellbeing.ErrNotFound) {
			RespondNotFound(ctx, "No wellbeing scores logged yet")
			return
		}

		RespondInternal(ctx, "Could not fetch latest wellbeing score")
		return
	}

	ctx.JSON(http.StatusOK, score)
}
