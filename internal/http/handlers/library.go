package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fitlistic/fitlistic/internal/cache"
	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/domain/activity"
	"github.com/fitlistic/fitlistic/internal/repo/postgres"
	"github.com/fitlistic/fitlistic/internal/utils"
	"github.com/gin-gonic/gin"
)

const maxLibraryLimit = 200

type LibraryStore interface {
	List(ctx context.Context, filter activity.ListFilter) ([]activity.Activity, error)
	GetByID(ctx context.Context, id string) (activity.Activity, error)
	Create(ctx context.Context, req activity.CreateActivityRequest) (activity.Activity, error)
}

// LibraryHandler serves the activity library. Reads go through a short TTL
// in-process cache since the library only changes on admin writes.
type LibraryHandler struct {
	store LibraryStore
	cache *cache.Cache
}

func NewLibraryHandler(store LibraryStore, c *cache.Cache) *LibraryHandler {
	return &LibraryHandler{store: store, cache: c}
}

func (h *LibraryHandler) List(ctx *gin.Context) {
	filter := activity.ListFilter{}

	if raw := ctx.Query("type"); raw != "" {
		t := activity.Type(raw)

		if !t.IsValid() {
			RespondBadRequest(ctx, "Unknown activity type", nil)
			return
		}

		filter.Type = &t
	}

	if raw := ctx.Query("level"); raw != "" {
		if !activity.IsValidLevel(raw) {
			RespondBadRequest(ctx, "level must be beginner, intermediate or advanced", nil)
			return
		}

		level := raw
		filter.Level = &level
	}

	if raw := ctx.Query("tag"); raw != "" {
		filter.Tags = []string{raw}
	}

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 || n > maxLibraryLimit {
			RespondBadRequest(ctx, "limit must be between 1 and "+strconv.Itoa(maxLibraryLimit), nil)
			return
		}

		filter.Limit = n
	}

	cacheKey := libraryCacheKey(filter)

	if h.cache != nil {
		if v, ok := h.cache.Get(cacheKey); ok {
			if items, ok := v.([]activity.Activity); ok {
				RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": items, "count": len(items)})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.store.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list activities")
		return
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, items)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *LibraryHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "activity id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	act, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			RespondNotFound(ctx, "Activity not found")
			return
		}

		RespondInternal(ctx, "Could not fetch activity")
		return
	}

	ctx.JSON(http.StatusOK, act)
}

// Create adds an activity to the library. Admin only, wired behind
// RequireRole in the router.
func (h *LibraryHandler) Create(ctx *gin.Context) {
	var req activity.CreateActivityRequest

	if !BindJSON(ctx, &req) {
		return
	}

	for _, level := range levelKeys(req.DifficultyLevels) {
		if !activity.IsValidLevel(level) {
			RespondBadRequest(ctx, "difficultyLevels keys must be beginner, intermediate or advanced", nil)
			return
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	act, err := h.store.Create(cctx, req)

	if err != nil {
		if errors.Is(err, postgres.ErrActivityNameTaken) {
			RespondConflict(ctx, "name_taken", "An activity with this name already exists.")
			return
		}

		RespondInternal(ctx, "Could not create activity")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusCreated, act)
}

func libraryCacheKey(f activity.ListFilter) string {
	key := "library:list:v1:type="
	if f.Type != nil {
		key += string(*f.Type)
	}
	key += ":level="
	if f.Level != nil {
		key += *f.Level
	}
	key += ":tag="
	if len(f.Tags) > 0 {
		key += f.Tags[0]
	}
	key += ":limit=" + strconv.Itoa(f.Limit)
	return key
}

func levelKeys(m map[string]activity.Prescription) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
