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

	"github.com/fitlistic/fitlistic/internal/domain/wellbeing"
	"github.com/fitlistic/fitlistic/internal/http/handlers"
)

// Fake store implementation of the handlers.WellbeingStore interface

type fakeWellbeingStore struct {
	createFn   func(ctx context.Context, userID string, score int, notes string) (wellbeing.Score, error)
	seriesFn   func(ctx context.Context, userID string, filter wellbeing.SeriesFilter) ([]wellbeing.Score, error)
	latestFn   func(ctx context.Context, userID string) (wellbeing.Score, error)
	hasTodayFn func(ctx context.Context, userID string, now time.Time) (bool, error)
}

func (f *fakeWellbeingStore) Create(ctx context.Context, userID string, score int, notes string) (wellbeing.Score, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, score, notes)
	}

	return wellbeing.Score{}, nil
}

func (f *fakeWellbeingStore) Series(ctx context.Context, userID string, filter wellbeing.SeriesFilter) ([]wellbeing.Score, error) {
	if f.seriesFn != nil {
		return f.seriesFn(ctx, userID, filter)
	}

	return nil, nil
}

func (f *fakeWellbeingStore) Latest(ctx context.Context, userID string) (wellbeing.Score, error) {
	if f.latestFn != nil {
		return f.latestFn(ctx, userID)
	}

	return wellbeing.Score{}, nil
}

func (f *fakeWellbeingStore) HasEntryToday(ctx context.Context, userID string, now time.Time) (bool, error) {
	if f.hasTodayFn != nil {
		return f.hasTodayFn(ctx, userID, now)
	}

	return false, nil
}

func TestCreateWellbeingHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeWellbeingStore)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"score": 4, "notes": "Felt great after morning yoga"}`,
			storeSetup: func(f *fakeWellbeingStore) {
				f.createFn = func(ctx context.Context, userID string, score int, notes string) (wellbeing.Score, error) {
					if userID != testUserID {
						return wellbeing.Score{}, errors.New("wrong user id")
					}
					if score != 4 {
						return wellbeing.Score{}, errors.New("score not passed through")
					}

					return wellbeing.Score{
						ID:        newUUID(),
						UserID:    userID,
						Score:     score,
						Notes:     notes,
						LoggedAt:  now,
						CreatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "score_too_high",
			body:           `{"score": 9}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "score_missing",
			body:           `{"notes": "no score"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "already_logged_today",
			body: `{"score": 3}`,
			storeSetup: func(f *fakeWellbeingStore) {
				f.createFn = func(ctx context.Context, userID string, score int, notes string) (wellbeing.Score, error) {
					return wellbeing.Score{}, wellbeing.ErrAlreadyLoggedToday
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "repo_error",
			body: `{"score": 3}`,
			storeSetup: func(f *fakeWellbeingStore) {
				f.createFn = func(ctx context.Context, userID string, score int, notes string) (wellbeing.Score, error) {
					return wellbeing.Score{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeWellbeingStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewWellbeingHandler(store)

			r := setupRouter(http.MethodPost, "/v1/wellbeing", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/v1/wellbeing", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestWellbeingTodayHandler(t *testing.T) {
	tests := []struct {
		name           string
		storeSetup     func(*fakeWellbeingStore)
		wantStatusCode int
		wantLogged     bool
	}{
		{
			name: "logged",
			storeSetup: func(f *fakeWellbeingStore) {
				f.hasTodayFn = func(ctx context.Context, userID string, now time.Time) (bool, error) {
					return true, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantLogged:     true,
		},
		{
			name:           "not_logged",
			wantStatusCode: http.StatusOK,
			wantLogged:     false,
		},
		{
			name: "repo_error",
			storeSetup: func(f *fakeWellbeingStore) {
				f.hasTodayFn = func(ctx context.Context, userID string, now time.Time) (bool, error) {
					return false, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeWellbeingStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewWellbeingHandler(store)

			r := setupRouter(http.MethodGet, "/v1/wellbeing/today", h.Today)

			req := httptest.NewRequest(http.MethodGet, "/v1/wellbeing/today", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				LoggedToday bool `json:"loggedToday"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.LoggedToday != tt.wantLogged {
				t.Fatalf("got loggedToday %v, want %v", resp.LoggedToday, tt.wantLogged)
			}
		})
	}
}

func TestLatestWellbeingHandler(t *testing.T) {
	t.Run("not_found", func(t *testing.T) {
		store := &fakeWellbeingStore{
			latestFn: func(ctx context.Context, userID string) (wellbeing.Score, error) {
				return wellbeing.Score{}, wellbeing.ErrNotFound
			},
		}

		h := handlers.NewWellbeingHandler(store)

		r := setupRouter(http.MethodGet, "/v1/wellbeing/latest", h.Latest)

		req := httptest.NewRequest(http.MethodGet, "/v1/wellbeing/latest", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusNotFound, w.Body.String())
		}
	})

	t.Run("success", func(t *testing.T) {
		store := &fakeWellbeingStore{
			latestFn: func(ctx context.Context, userID string) (wellbeing.Score, error) {
				return wellbeing.Score{ID: newUUID(), Score: 5, LoggedAt: time.Now().UTC()}, nil
			},
		}

		h := handlers.NewWellbeingHandler(store)

		r := setupRouter(http.MethodGet, "/v1/wellbeing/latest", h.Latest)

		req := httptest.NewRequest(http.MethodGet, "/v1/wellbeing/latest", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}
	})
}
