package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/domain/reminder"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/fitlistic/fitlistic/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReminderStore interface {
	Create(ctx context.Context, userID string, req reminder.CreateReminderRequest) (reminder.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]reminder.Reminder, error)
	SetCompleted(ctx context.Context, userID, id string, completed bool) (reminder.Reminder, error)
	Delete(ctx context.Context, userID, id string) error
}

type RemindersHandler struct {
	store ReminderStore
}

func NewRemindersHandler(store ReminderStore) *RemindersHandler {
	return &RemindersHandler{store: store}
}

func (h *RemindersHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req reminder.CreateReminderRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(time.Now().UTC()); err != nil {
		if errors.Is(err, reminder.ErrInThePast) {
			RespondBadRequest(ctx, "Reminder time must be in the future", nil)
			return
		}

		if errors.Is(err, reminder.ErrTooFarAhead) {
			RespondBadRequest(ctx, "Reminders can be scheduled at most a year ahead", nil)
			return
		}

		RespondBadRequest(ctx, "Invalid reminder", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	rem, err := h.store.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create reminder")
		return
	}

	ctx.JSON(http.StatusCreated, rem)
}

func (h *RemindersHandler) List(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	reminders, err := h.store.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list reminders")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": reminders,
		"count": len(reminders),
	})
}

func (h *RemindersHandler) Update(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "reminder id must be a valid UUID", nil)
		return
	}

	var req reminder.UpdateReminderRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	rem, err := h.store.SetCompleted(cctx, userID, id, *req.IsCompleted)

	if err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			RespondNotFound(ctx, "Reminder not found")
			return
		}

		RespondInternal(ctx, "Could not update reminder")
		return
	}

	ctx.JSON(http.StatusOK, rem)
}

func (h *RemindersHandler) Delete(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "reminder id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.store.Delete(cctx, userID, id)

	if err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			RespondNotFound(ctx, "Reminder not found")
			return
		}

		RespondInternal(ctx, "Could not delete reminder")
		return
	}

	ctx.Status(http.StatusNoContent)
}
