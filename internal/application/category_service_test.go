package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/artist-booking/internal/persistence"
)

func TestCategoryService(t *testing.T) {
	t.Run("validates type and name", func(t *testing.T) {
		svc := NewCategoryService(newFakeStore(), nil, nil)

		_, err := svc.CreateCategory(context.Background(), CategoryInput{Type: "venue", Name: "  "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["type"]; !ok {
			t.Fatalf("expected type error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("duplicate name and type", func(t *testing.T) {
		ids := &sequenceIDs{prefix: "cat"}
		svc := NewCategoryService(newFakeStore(), ids.ID, fixedClock)

		created, err := svc.CreateCategory(context.Background(), CategoryInput{Type: CategoryTypeArtist, Name: " Jazz "})
		if err != nil {
			t.Fatalf("CreateCategory returned error: %v", err)
		}
		if created.Name != "Jazz" || created.ID != "cat-1" {
			t.Fatalf("unexpected category %+v", created)
		}

		if _, err := svc.CreateCategory(context.Background(), CategoryInput{Type: CategoryTypeArtist, Name: "Jazz"}); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		if _, err := svc.CreateCategory(context.Background(), CategoryInput{Type: CategoryTypeMoment, Name: "Jazz"}); err != nil {
			t.Fatalf("expected same name with other type to succeed, got %v", err)
		}
	})

	t.Run("update applies patch", func(t *testing.T) {
		store := newFakeStore()
		store.seedCategory("c1", CategoryTypeArtist, "Jazz")
		svc := NewCategoryService(store, nil, fixedClock)

		description := "smooth"
		updated, err := svc.UpdateCategory(context.Background(), "c1", CategoryPatch{Description: &description})
		if err != nil {
			t.Fatalf("UpdateCategory returned error: %v", err)
		}
		if updated.Name != "Jazz" || updated.Description == nil || *updated.Description != "smooth" {
			t.Fatalf("unexpected category %+v", updated)
		}

		bad := "venue"
		if _, err := svc.UpdateCategory(context.Background(), "c1", CategoryPatch{Type: &bad}); err == nil {
			t.Fatalf("expected validation error for bad type")
		}
		if _, err := svc.UpdateCategory(context.Background(), "missing", CategoryPatch{}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete of referenced category conflicts", func(t *testing.T) {
		store := newFakeStore()
		store.seedCategory("c1", CategoryTypeArtist, "Jazz")
		store.seedArtist("a1", "c1")
		recorder := &recorderStub{}
		svc := NewCategoryService(store, nil, nil, WithRecorder(recorder))

		if err := svc.DeleteCategory(context.Background(), "c1"); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if len(recorder.operations) != 1 || recorder.operations[0] != "CategoryService.DeleteCategory:conflict" {
			t.Fatalf("unexpected recorded operations %v", recorder.operations)
		}
		if err := svc.DeleteCategory(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list filters by type", func(t *testing.T) {
		store := newFakeStore()
		store.seedCategory("c1", CategoryTypeArtist, "Jazz")
		store.seedCategory("c2", CategoryTypeMoment, "Wedding")
		store.seedCategory("c3", CategoryTypeArtist, "Rock")
		svc := NewCategoryService(store, nil, nil)

		page, err := svc.ListCategories(context.Background(), CategoryTypeArtist, PageRequest{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("ListCategories returned error: %v", err)
		}
		if page.Total != 2 || len(page.Items) != 2 {
			t.Fatalf("expected two artist categories, got %+v", page)
		}

		if _, err := svc.ListCategories(context.Background(), "venue", PageRequest{Page: 1, Limit: 10}); err == nil {
			t.Fatalf("expected validation error for unknown type")
		}
	})

	t.Run("maps unexpected repository errors through", func(t *testing.T) {
		store := newFakeStore()
		store.seedCategory("c1", CategoryTypeArtist, "Jazz")
		store.deleteErr = errors.New("disk full")
		svc := NewCategoryService(store, nil, nil)

		err := svc.DeleteCategory(context.Background(), "c1")
		if err == nil || ErrorKind(err) != "unexpected" {
			t.Fatalf("expected unexpected error, got %v", err)
		}
	})
}

func TestMapCategoryRepoError(t *testing.T) {
	if err := mapCategoryRepoError(persistence.ErrDuplicate); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mapCategoryRepoError(persistence.ErrForeignKeyViolation); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mapCategoryRepoError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
