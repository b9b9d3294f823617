package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/domain/user"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/fitlistic/fitlistic/internal/planner"
	"github.com/fitlistic/fitlistic/internal/security"
	"github.com/gin-gonic/gin"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type ProfileHandler struct {
	users        ProfileStore
	refreshStore RefreshTokenStore
}

func NewProfileHandler(users ProfileStore, refreshStore RefreshTokenStore) *ProfileHandler {
	return &ProfileHandler{users: users, refreshStore: refreshStore}
}

func (h *ProfileHandler) Get(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "Profile not found")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	resp := gin.H{"user": u}

	if u.HeightCm > 0 && u.WeightKg > 0 {
		resp["bmi"] = planner.BMI(u.WeightKg, float64(u.HeightCm))
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) Update(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, userID, req)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "Profile not found")
			return
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every refresh token so all other sessions must log in again.
func (h *ProfileHandler) ChangePassword(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Current password is incorrect.")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := h.users.UpdatePassword(cctx, userID, hash); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	tx, err := h.refreshStore.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	if err := h.refreshStore.RevokeAllForUser(cctx, tx, userID); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := tx.Commit(cctx); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	ctx.Status(http.StatusNoContent)
}
