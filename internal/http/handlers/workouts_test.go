package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/user"
	"github.com/fitlistic/fitlistic/internal/domain/workout"
	"github.com/fitlistic/fitlistic/internal/http/handlers"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/fitlistic/fitlistic/internal/repo/postgres"
	"github.com/fitlistic/fitlistic/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

const testUserID = "5f8a2e6a-3f3e-4a1c-9a9d-0c5a8f1d2b3c"

// setupRouter wires a single handler behind a middleware that injects a
// fixed identity, the way RequireAuth would after verifying a token.
func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(func(c *gin.Context) {
		middlewares.SetIdentity(c, testUserID, "tester", "user")
		c.Next()
	})

	r.Handle(method, path, h)

	return r
}

// Fake store implementations of the handlers.WorkoutLogStore interface

type fakeWorkoutLogStore struct {
	createFn     func(ctx context.Context, p postgres.CreateLogParams) (workout.Log, error)
	getFn        func(ctx context.Context, userID, id string) (workout.Log, error)
	listCursorFn func(ctx context.Context, userID string, filter workout.ListFilter, afterLoggedAt time.Time, afterID string) ([]workout.Log, bool, error)
	deleteFn     func(ctx context.Context, userID, id string) error
}

func (f *fakeWorkoutLogStore) Create(ctx context.Context, p postgres.CreateLogParams) (workout.Log, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}

	return workout.Log{}, nil
}

func (f *fakeWorkoutLogStore) GetByID(ctx context.Context, userID, id string) (workout.Log, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, id)
	}

	return workout.Log{}, nil
}

func (f *fakeWorkoutLogStore) ListCursor(ctx context.Context, userID string, filter workout.ListFilter, afterLoggedAt time.Time, afterID string) ([]workout.Log, bool, error) {
	if f.listCursorFn != nil {
		return f.listCursorFn(ctx, userID, filter, afterLoggedAt, afterID)
	}

	return nil, false, nil
}

func (f *fakeWorkoutLogStore) Delete(ctx context.Context, userID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}

	return nil
}

type fakeWorkoutUserStore struct {
	getFn       func(ctx context.Context, id string) (user.User, error)
	incrementFn func(ctx context.Context, id string) error
}

func (f *fakeWorkoutUserStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return user.User{ID: id, WeightKg: 70}, nil
}

func (f *fakeWorkoutUserStore) IncrementWorkouts(ctx context.Context, id string) error {
	if f.incrementFn != nil {
		return f.incrementFn(ctx, id)
	}

	return nil
}

func TestCreateWorkoutHandler(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")

	tests := []struct {
		name           string
		body           string
		logsSetup      func(*fakeWorkoutLogStore)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"date": "` + today + `",
				"workoutType": "strength",
				"blocks": [
					{"activityId": "` + newUUID() + `", "activityType": "strength", "name": "Squats", "durationMinutes": 30}
				]
			}`,
			logsSetup: func(f *fakeWorkoutLogStore) {
				f.createFn = func(ctx context.Context, p postgres.CreateLogParams) (workout.Log, error) {
					if p.UserID != testUserID {
						return workout.Log{}, errors.New("wrong user id")
					}
					if p.TotalDurationMinutes != 30 {
						return workout.Log{}, errors.New("duration not aggregated")
					}
					if p.TotalCaloriesBurned == 0 {
						return workout.Log{}, errors.New("calories not estimated")
					}

					return workout.Log{
						ID:                   newUUID(),
						UserID:               p.UserID,
						LoggedAt:             p.LoggedAt,
						WorkoutType:          p.WorkoutType,
						Blocks:               p.Blocks,
						TotalDurationMinutes: p.TotalDurationMinutes,
						TotalCaloriesBurned:  p.TotalCaloriesBurned,
						CreatedAt:            time.Now().UTC(),
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "validation_error_missing_type",
			body:           `{"date": "` + today + `"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "future_date_rejected",
			body: `{
				"date": "` + time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02") + `",
				"workoutType": "strength"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "bad_block_type",
			body: `{
				"date": "` + today + `",
				"workoutType": "strength",
				"blocks": [
					{"activityId": "` + newUUID() + `", "activityType": "sleeping", "durationMinutes": 30}
				]
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"date": "` + today + `", "workoutType": "strength"}`,
			logsSetup: func(f *fakeWorkoutLogStore) {
				f.createFn = func(ctx context.Context, p postgres.CreateLogParams) (workout.Log, error) {
					return workout.Log{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			logs := &fakeWorkoutLogStore{}
			users := &fakeWorkoutUserStore{}

			if tt.logsSetup != nil {
				tt.logsSetup(logs)
			}

			h := handlers.NewWorkoutsHandler(logs, users, nil)

			r := setupRouter(http.MethodPost, "/v1/workouts", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/v1/workouts", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListWorkoutsHandler(t *testing.T) {
	now := time.Now().UTC()

	validCursor, err := utils.EncodeWorkoutCursor(now.Add(-time.Hour), newUUID())
	if err != nil {
		t.Fatalf("failed to build cursor: %v", err)
	}

	tests := []struct {
		name           string
		url            string
		logsSetup      func(*fakeWorkoutLogStore)
		wantStatusCode int
		wantCount      int
		wantNextCursor bool
	}{
		{
			name: "success_first_page",
			url:  "/v1/workouts?limit=20",
			logsSetup: func(f *fakeWorkoutLogStore) {
				f.listCursorFn = func(ctx context.Context, userID string, filter workout.ListFilter, afterLoggedAt time.Time, afterID string) ([]workout.Log, bool, error) {
					if !afterLoggedAt.IsZero() || afterID != "" {
						return nil, false, errors.New("first page should have no cursor")
					}
					if filter.Limit != 20 {
						return nil, false, errors.New("limit not passed through")
					}

					return []workout.Log{
						{ID: newUUID(), LoggedAt: now, WorkoutType: "yoga", TotalDurationMinutes: 45},
					}, true, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
			wantNextCursor: true,
		},
		{
			name: "success_with_cursor",
			url:  "/v1/workouts?cursor=" + validCursor,
			logsSetup: func(f *fakeWorkoutLogStore) {
				f.listCursorFn = func(ctx context.Context, userID string, filter workout.ListFilter, afterLoggedAt time.Time, afterID string) ([]workout.Log, bool, error) {
					if afterLoggedAt.IsZero() || afterID == "" {
						return nil, false, errors.New("cursor not decoded")
					}

					return nil, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name: "date_window_inclusive_to",
			url:  "/v1/workouts?from=2026-08-01&to=2026-08-31",
			logsSetup: func(f *fakeWorkoutLogStore) {
				f.listCursorFn = func(ctx context.Context, userID string, filter workout.ListFilter, afterLoggedAt time.Time, afterID string) ([]workout.Log, bool, error) {
					if filter.From == nil || filter.To == nil {
						return nil, false, errors.New("window not passed through")
					}
					want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
					if !filter.To.Equal(want) {
						return nil, false, errors.New("to should be pushed to the next midnight")
					}

					return nil, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_cursor",
			url:            "/v1/workouts?cursor=not-a-cursor",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "limit_too_large",
			url:            "/v1/workouts?limit=500",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			logs := &fakeWorkoutLogStore{}
			users := &fakeWorkoutUserStore{}

			if tt.logsSetup != nil {
				tt.logsSetup(logs)
			}

			h := handlers.NewWorkoutsHandler(logs, users, nil)

			r := setupRouter(http.MethodGet, "/v1/workouts", h.List)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Items      []workout.Log `json:"items"`
				Count      int           `json:"count"`
				NextCursor *string       `json:"nextCursor"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Count != tt.wantCount {
				t.Fatalf("got count %d, want %d", resp.Count, tt.wantCount)
			}

			if tt.wantNextCursor && resp.NextCursor == nil {
				t.Fatalf("expected nextCursor in response")
			}
		})
	}
}

func TestDeleteWorkoutHandler(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		logsSetup      func(*fakeWorkoutLogStore)
		wantStatusCode int
	}{
		{
			name: "success",
			id:   newUUID(),
			logsSetup: func(f *fakeWorkoutLogStore) {
				f.deleteFn = func(ctx context.Context, userID, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			id:   newUUID(),
			logsSetup: func(f *fakeWorkoutLogStore) {
				f.deleteFn = func(ctx context.Context, userID, id string) error {
					return workout.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "bad_id",
			id:             "not-a-uuid",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			logs := &fakeWorkoutLogStore{}
			users := &fakeWorkoutUserStore{}

			if tt.logsSetup != nil {
				tt.logsSetup(logs)
			}

			h := handlers.NewWorkoutsHandler(logs, users, nil)

			r := setupRouter(http.MethodDelete, "/v1/workouts/:id", h.Delete)

			req := httptest.NewRequest(http.MethodDelete, "/v1/workouts/"+tt.id, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
