package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fitlistic/fitlistic/internal/domain/activity"
	"github.com/google/uuid"
)

// ActivitiesRepo is an in-memory activity store used by the planner and its
// tests. It mirrors the postgres repo's filtering behaviour.
type ActivitiesRepo struct {
	mu    sync.RWMutex
	items map[string]activity.Activity
}

func NewActivitiesRepo() *ActivitiesRepo {
	return &ActivitiesRepo{
		items: make(map[string]activity.Activity),
	}
}

func (r *ActivitiesRepo) Create(ctx context.Context, req activity.CreateActivityRequest) (activity.Activity, error) {
	act := activity.Activity{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Type:             req.Type,
		Tags:             req.Tags,
		DifficultyLevels: req.DifficultyLevels,
		Instructions:     req.Instructions,
		Benefits:         req.Benefits,
		TargetAreas:      req.TargetAreas,
		EquipmentNeeded:  req.EquipmentNeeded,
	}

	r.mu.Lock()
	r.items[act.ID] = act
	r.mu.Unlock()

	return act, nil
}

func (r *ActivitiesRepo) Put(act activity.Activity) {
	if act.ID == "" {
		act.ID = uuid.NewString()
	}

	r.mu.Lock()
	r.items[act.ID] = act
	r.mu.Unlock()
}

func (r *ActivitiesRepo) GetByID(ctx context.Context, id string) (activity.Activity, error) {
	r.mu.RLock()
	act, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}

	return act, nil
}

func (r *ActivitiesRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

func (r *ActivitiesRepo) BulkInsert(ctx context.Context, activities []activity.Activity) error {
	for _, act := range activities {
		r.Put(act)
	}

	return nil
}

func (r *ActivitiesRepo) List(ctx context.Context, filter activity.ListFilter) ([]activity.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []activity.Activity{}

	for _, act := range r.items {
		if filter.Type != nil && act.Type != *filter.Type {
			continue
		}

		if len(filter.Tags) > 0 && !hasAnyTag(act.Tags, filter.Tags) {
			continue
		}

		if filter.Level != nil {
			if _, ok := act.DifficultyLevels[*filter.Level]; !ok {
				continue
			}
		}

		out = append(out, act)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}

	return false
}
