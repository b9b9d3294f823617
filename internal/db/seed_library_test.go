package db

import (
	"context"
	"testing"

	"github.com/fitlistic/fitlistic/internal/domain/activity"
	"github.com/fitlistic/fitlistic/internal/repo/memory"
)

func TestSeedActivityLibrary(t *testing.T) {
	repo := memory.NewActivitiesRepo()
	ctx := context.Background()

	n, err := SeedActivityLibrary(ctx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n == 0 {
		t.Fatalf("expected the seed to insert activities")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != n {
		t.Fatalf("got %d activities, want %d", count, n)
	}

	// Plan generation needs every component type available.
	for _, typ := range []activity.Type{
		activity.TypeExercise,
		activity.TypeWarmUp,
		activity.TypeCoolDown,
		activity.TypeStretching,
		activity.TypeMeditation,
		activity.TypeBreathwork,
	} {
		found, err := repo.List(ctx, activity.ListFilter{Type: &typ})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(found) == 0 {
			t.Fatalf("seed has no %s activities", typ)
		}
	}
}

func TestSeedActivityLibraryIdempotent(t *testing.T) {
	repo := memory.NewActivitiesRepo()
	ctx := context.Background()

	first, err := SeedActivityLibrary(ctx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := SeedActivityLibrary(ctx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second != 0 {
		t.Fatalf("second seed inserted %d activities, want 0", second)
	}

	count, _ := repo.Count(ctx)

	if count != first {
		t.Fatalf("got %d activities after reseeding, want %d", count, first)
	}
}
