package persistence_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/example/artist-booking/internal/application"
	"github.com/example/artist-booking/internal/persistence"
	"github.com/example/artist-booking/internal/testfixtures"
)

func seedArtist(t *testing.T, store persistence.Store) (persistence.Category, persistence.Artist) {
	t.Helper()
	ctx := context.Background()

	category := testfixtures.NewCategoryFixture().Persistence()
	if err := store.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	artist := testfixtures.NewArtistFixture(category.ID).Persistence()
	if err := store.CreateArtist(ctx, artist); err != nil {
		t.Fatalf("CreateArtist failed: %v", err)
	}
	return category, artist
}

func TestCategoryRepository(t *testing.T) {
	testfixtures.ForEachBackend(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()

		jazz := testfixtures.NewCategoryFixture(testfixtures.WithCategoryName("Jazz"), testfixtures.WithCategoryDescription("Live jazz")).Persistence()
		wedding := testfixtures.NewCategoryFixture(testfixtures.WithCategoryName("Wedding"), testfixtures.WithCategoryType(application.CategoryTypeMoment)).Persistence()
		for _, category := range []persistence.Category{jazz, wedding} {
			if err := store.CreateCategory(ctx, category); err != nil {
				t.Fatalf("CreateCategory failed: %v", err)
			}
		}

		fetched, err := store.GetCategory(ctx, jazz.ID)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if fetched.Name != "Jazz" || fetched.Description == nil || *fetched.Description != "Live jazz" {
			t.Fatalf("unexpected category: %#v", fetched)
		}
		if !fetched.CreatedAt.Equal(jazz.CreatedAt) {
			t.Fatalf("expected created_at %v, got %v", jazz.CreatedAt, fetched.CreatedAt)
		}

		duplicate := testfixtures.NewCategoryFixture(testfixtures.WithCategoryName("JAZZ")).Persistence()
		if err := store.CreateCategory(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		// Same name under the other type is allowed.
		jazzMoment := testfixtures.NewCategoryFixture(testfixtures.WithCategoryName("Jazz"), testfixtures.WithCategoryType(application.CategoryTypeMoment)).Persistence()
		if err := store.CreateCategory(ctx, jazzMoment); err != nil {
			t.Fatalf("CreateCategory with other type failed: %v", err)
		}

		moments, total, err := store.ListCategories(ctx, persistence.CategoryFilter{Type: application.CategoryTypeMoment})
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if total != 2 || len(moments) != 2 || moments[0].ID != jazzMoment.ID {
			t.Fatalf("unexpected moment categories: total=%d %#v", total, moments)
		}

		paged, total, err := store.ListCategories(ctx, persistence.CategoryFilter{Page: persistence.Page{Offset: 1, Limit: 1}})
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if total != 3 || len(paged) != 1 || paged[0].ID != wedding.ID {
			t.Fatalf("unexpected page: total=%d %#v", total, paged)
		}

		jazz.Name = "Smooth Jazz"
		jazz.UpdatedAt = jazz.UpdatedAt.Add(time.Hour)
		if err := store.UpdateCategory(ctx, jazz); err != nil {
			t.Fatalf("UpdateCategory failed: %v", err)
		}
		if fetched, _ = store.GetCategory(ctx, jazz.ID); fetched.Name != "Smooth Jazz" {
			t.Fatalf("update not persisted: %#v", fetched)
		}

		missing := testfixtures.NewCategoryFixture().Persistence()
		if err := store.UpdateCategory(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on update, got %v", err)
		}
		if err := store.DeleteCategory(ctx, wedding.ID); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}
		if _, err := store.GetCategory(ctx, wedding.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteCategory(ctx, wedding.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestArtistRepository(t *testing.T) {
	testfixtures.ForEachBackend(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		category, artist := seedArtist(t, store)

		fetched, err := store.GetArtist(ctx, artist.ID)
		if err != nil {
			t.Fatalf("GetArtist failed: %v", err)
		}
		if !slices.Equal(fetched.Tags, artist.Tags) || fetched.Rating != artist.Rating || fetched.CategoryID != category.ID {
			t.Fatalf("unexpected artist: %#v", fetched)
		}

		orphan := testfixtures.NewArtistFixture("no-such-category").Persistence()
		if err := store.CreateArtist(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}

		if err := store.DeleteCategory(ctx, category.ID); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation for referenced category, got %v", err)
		}

		artist.Tags = []string{"swing", "vocal"}
		artist.Rating = 5
		if err := store.UpdateArtist(ctx, artist); err != nil {
			t.Fatalf("UpdateArtist failed: %v", err)
		}
		fetched, _ = store.GetArtist(ctx, artist.ID)
		if !slices.Equal(fetched.Tags, []string{"swing", "vocal"}) || fetched.Rating != 5 {
			t.Fatalf("update not persisted: %#v", fetched)
		}

		second := testfixtures.NewArtistFixture(category.ID).Persistence()
		if err := store.CreateArtist(ctx, second); err != nil {
			t.Fatalf("CreateArtist failed: %v", err)
		}
		artists, total, err := store.ListArtists(ctx, persistence.Page{Limit: 10})
		if err != nil {
			t.Fatalf("ListArtists failed: %v", err)
		}
		if total != 2 || len(artists) != 2 || artists[0].ID != second.ID {
			t.Fatalf("expected newest artist first, got %#v", artists)
		}
	})
}

func TestAvailabilityRepository(t *testing.T) {
	testfixtures.ForEachBackend(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		_, artist := seedArtist(t, store)
		base := testfixtures.ReferenceTime()

		morning := testfixtures.NewSlotFixture(artist.ID, testfixtures.WithSlotWindow(base.Add(-2*time.Hour), base.Add(-time.Hour))).Persistence()
		noon := testfixtures.NewSlotFixture(artist.ID, testfixtures.WithSlotWindow(base, base.Add(time.Hour))).Persistence()
		for _, slot := range []persistence.AvailabilitySlot{noon, morning} {
			if err := store.CreateSlot(ctx, slot); err != nil {
				t.Fatalf("CreateSlot failed: %v", err)
			}
		}

		overlapping := testfixtures.NewSlotFixture(artist.ID, testfixtures.WithSlotWindow(base.Add(30*time.Minute), base.Add(90*time.Minute))).Persistence()
		if err := store.CreateSlot(ctx, overlapping); !errors.Is(err, persistence.ErrOverlap) {
			t.Fatalf("expected ErrOverlap, got %v", err)
		}

		adjacent := testfixtures.NewSlotFixture(artist.ID, testfixtures.WithSlotWindow(base.Add(time.Hour), base.Add(2*time.Hour))).Persistence()
		if err := store.CreateSlot(ctx, adjacent); err != nil {
			t.Fatalf("adjacent slot rejected: %v", err)
		}

		orphan := testfixtures.NewSlotFixture("no-such-artist").Persistence()
		if err := store.CreateSlot(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}

		// Moving a slot inside its own window must not conflict with itself.
		noon.End = base.Add(45 * time.Minute)
		if err := store.UpdateSlot(ctx, noon); err != nil {
			t.Fatalf("UpdateSlot failed: %v", err)
		}
		noon.End = base.Add(90 * time.Minute)
		if err := store.UpdateSlot(ctx, noon); !errors.Is(err, persistence.ErrOverlap) {
			t.Fatalf("expected ErrOverlap on update, got %v", err)
		}

		slots, err := store.ListSlotsByArtist(ctx, artist.ID)
		if err != nil {
			t.Fatalf("ListSlotsByArtist failed: %v", err)
		}
		ids := make([]string, 0, len(slots))
		for _, slot := range slots {
			ids = append(ids, slot.ID)
		}
		if !slices.Equal(ids, []string{morning.ID, noon.ID, adjacent.ID}) {
			t.Fatalf("unexpected slot order: %v", ids)
		}
		if !slots[1].End.Equal(base.Add(45 * time.Minute)) {
			t.Fatalf("expected updated end, got %v", slots[1].End)
		}

		page, total, err := store.ListSlots(ctx, persistence.Page{Offset: 2, Limit: 5})
		if err != nil {
			t.Fatalf("ListSlots failed: %v", err)
		}
		if total != 3 || len(page) != 1 || page[0].ID != adjacent.ID {
			t.Fatalf("unexpected slot page: total=%d %#v", total, page)
		}

		if err := store.DeleteSlot(ctx, morning.ID); err != nil {
			t.Fatalf("DeleteSlot failed: %v", err)
		}
		if _, err := store.GetSlot(ctx, morning.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConcurrentCreateSlotKeepsOneWinner(t *testing.T) {
	testfixtures.ForEachBackend(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		_, artist := seedArtist(t, store)
		base := testfixtures.ReferenceTime()

		const writers = 8
		start := make(chan struct{})
		errs := make(chan error, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			slot := testfixtures.NewSlotFixture(artist.ID,
				testfixtures.WithSlotID(fmt.Sprintf("race-%d", i)),
				testfixtures.WithSlotWindow(base.Add(time.Duration(i)*time.Minute), base.Add(time.Hour+time.Duration(i)*time.Minute)),
			).Persistence()
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				errs <- store.CreateSlot(ctx, slot)
			}()
		}
		close(start)
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			switch {
			case err == nil:
				created++
			case errors.Is(err, persistence.ErrOverlap):
			default:
				t.Fatalf("unexpected CreateSlot error: %v", err)
			}
		}
		if created != 1 {
			t.Fatalf("expected exactly one slot to win, got %d", created)
		}

		slots, err := store.ListSlotsByArtist(ctx, artist.ID)
		if err != nil {
			t.Fatalf("ListSlotsByArtist failed: %v", err)
		}
		if len(slots) != 1 {
			t.Fatalf("expected one stored slot, got %d", len(slots))
		}
	})
}

func TestConcurrentUpdateSlotKeepsOneWinner(t *testing.T) {
	testfixtures.ForEachBackend(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		_, artist := seedArtist(t, store)
		base := testfixtures.ReferenceTime()

		first := testfixtures.NewSlotFixture(artist.ID, testfixtures.WithSlotWindow(base, base.Add(time.Hour))).Persistence()
		second := testfixtures.NewSlotFixture(artist.ID, testfixtures.WithSlotWindow(base.Add(3*time.Hour), base.Add(4*time.Hour))).Persistence()
		for _, slot := range []persistence.AvailabilitySlot{first, second} {
			if err := store.CreateSlot(ctx, slot); err != nil {
				t.Fatalf("CreateSlot failed: %v", err)
			}
		}

		// Both slots move into windows that overlap each other.
		first.Start, first.End = base.Add(90*time.Minute), base.Add(150*time.Minute)
		second.Start, second.End = base.Add(2*time.Hour), base.Add(3*time.Hour)

		start := make(chan struct{})
		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for _, slot := range []persistence.AvailabilitySlot{first, second} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				errs <- store.UpdateSlot(ctx, slot)
			}()
		}
		close(start)
		wg.Wait()
		close(errs)

		updated := 0
		for err := range errs {
			switch {
			case err == nil:
				updated++
			case errors.Is(err, persistence.ErrOverlap):
			default:
				t.Fatalf("unexpected UpdateSlot error: %v", err)
			}
		}
		if updated != 1 {
			t.Fatalf("expected exactly one update to win, got %d", updated)
		}
	})
}

func TestMomentRepository(t *testing.T) {
	testfixtures.ForEachBackend(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		_, artist := seedArtist(t, store)

		momentCategory := testfixtures.NewCategoryFixture(testfixtures.WithCategoryType(application.CategoryTypeMoment)).Persistence()
		if err := store.CreateCategory(ctx, momentCategory); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}

		early := testfixtures.NewMomentFixture(artist.ID, momentCategory.ID, testfixtures.WithMomentMessage("first dance")).Persistence()
		late := testfixtures.NewMomentFixture(artist.ID, momentCategory.ID, testfixtures.WithMomentTimes("20:00", "23:00")).Persistence()
		nextDay := testfixtures.NewMomentFixture(artist.ID, momentCategory.ID, testfixtures.WithMomentDate("2025-01-11")).Persistence()
		for _, moment := range []persistence.Moment{late, early, nextDay} {
			if err := store.CreateMoment(ctx, moment); err != nil {
				t.Fatalf("CreateMoment failed: %v", err)
			}
		}

		fetched, err := store.GetMoment(ctx, early.ID)
		if err != nil {
			t.Fatalf("GetMoment failed: %v", err)
		}
		if fetched.Message == nil || *fetched.Message != "first dance" || fetched.StartTime != "10:00" {
			t.Fatalf("unexpected moment: %#v", fetched)
		}

		listed, total, err := store.ListMoments(ctx, persistence.Page{})
		if err != nil {
			t.Fatalf("ListMoments failed: %v", err)
		}
		if total != 3 || listed[0].ID != nextDay.ID || listed[1].ID != late.ID || listed[2].ID != early.ID {
			t.Fatalf("expected date then start time descending, got %#v", listed)
		}

		byArtist, err := store.ListMomentsByArtist(ctx, artist.ID)
		if err != nil {
			t.Fatalf("ListMomentsByArtist failed: %v", err)
		}
		if len(byArtist) != 3 || byArtist[0].ID != early.ID {
			t.Fatalf("expected chronological order, got %#v", byArtist)
		}

		orphan := testfixtures.NewMomentFixture("no-such-artist", momentCategory.ID).Persistence()
		if err := store.CreateMoment(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}

		if err := store.DeleteCategory(ctx, momentCategory.ID); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation for referenced category, got %v", err)
		}
	})
}

func TestDeleteArtistCascades(t *testing.T) {
	testfixtures.ForEachBackend(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		category, artist := seedArtist(t, store)

		momentCategory := testfixtures.NewCategoryFixture(testfixtures.WithCategoryType(application.CategoryTypeMoment)).Persistence()
		if err := store.CreateCategory(ctx, momentCategory); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}
		slot := testfixtures.NewSlotFixture(artist.ID).Persistence()
		if err := store.CreateSlot(ctx, slot); err != nil {
			t.Fatalf("CreateSlot failed: %v", err)
		}
		moment := testfixtures.NewMomentFixture(artist.ID, momentCategory.ID).Persistence()
		if err := store.CreateMoment(ctx, moment); err != nil {
			t.Fatalf("CreateMoment failed: %v", err)
		}

		if err := store.DeleteArtist(ctx, artist.ID); err != nil {
			t.Fatalf("DeleteArtist failed: %v", err)
		}
		if _, err := store.GetSlot(ctx, slot.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected slot to be removed, got %v", err)
		}
		if _, err := store.GetMoment(ctx, moment.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected moment to be removed, got %v", err)
		}
		if err := store.DeleteArtist(ctx, artist.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteCategory(ctx, category.ID); err != nil {
			t.Fatalf("category should be free after cascade: %v", err)
		}
	})
}
