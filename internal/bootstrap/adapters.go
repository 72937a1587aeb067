package bootstrap

import (
	"context"

	"github.com/example/artist-booking/internal/application"
	"github.com/example/artist-booking/internal/persistence"
)

type categoryRepositoryAdapter struct {
	repo persistence.CategoryRepository
}

func newCategoryRepositoryAdapter(repo persistence.CategoryRepository) *categoryRepositoryAdapter {
	return &categoryRepositoryAdapter{repo: repo}
}

func (a *categoryRepositoryAdapter) CreateCategory(ctx context.Context, category application.Category) (application.Category, error) {
	if err := a.repo.CreateCategory(ctx, toPersistenceCategory(category)); err != nil {
		return application.Category{}, err
	}
	return a.GetCategory(ctx, category.ID)
}

func (a *categoryRepositoryAdapter) GetCategory(ctx context.Context, id string) (application.Category, error) {
	stored, err := a.repo.GetCategory(ctx, id)
	if err != nil {
		return application.Category{}, err
	}
	return toApplicationCategory(stored), nil
}

func (a *categoryRepositoryAdapter) UpdateCategory(ctx context.Context, category application.Category) (application.Category, error) {
	if err := a.repo.UpdateCategory(ctx, toPersistenceCategory(category)); err != nil {
		return application.Category{}, err
	}
	return a.GetCategory(ctx, category.ID)
}

func (a *categoryRepositoryAdapter) DeleteCategory(ctx context.Context, id string) error {
	return a.repo.DeleteCategory(ctx, id)
}

func (a *categoryRepositoryAdapter) ListCategories(ctx context.Context, filter application.CategoryFilter) ([]application.Category, int, error) {
	models, total, err := a.repo.ListCategories(ctx, persistence.CategoryFilter{
		Type: filter.Type,
		Page: persistence.Page{Offset: filter.Offset, Limit: filter.Limit},
	})
	if err != nil {
		return nil, 0, err
	}
	categories := make([]application.Category, 0, len(models))
	for _, model := range models {
		categories = append(categories, toApplicationCategory(model))
	}
	return categories, total, nil
}

type artistRepositoryAdapter struct {
	repo persistence.ArtistRepository
}

func newArtistRepositoryAdapter(repo persistence.ArtistRepository) *artistRepositoryAdapter {
	return &artistRepositoryAdapter{repo: repo}
}

func (a *artistRepositoryAdapter) CreateArtist(ctx context.Context, artist application.Artist) (application.Artist, error) {
	if err := a.repo.CreateArtist(ctx, toPersistenceArtist(artist)); err != nil {
		return application.Artist{}, err
	}
	return a.GetArtist(ctx, artist.ID)
}

func (a *artistRepositoryAdapter) GetArtist(ctx context.Context, id string) (application.Artist, error) {
	stored, err := a.repo.GetArtist(ctx, id)
	if err != nil {
		return application.Artist{}, err
	}
	return toApplicationArtist(stored), nil
}

func (a *artistRepositoryAdapter) UpdateArtist(ctx context.Context, artist application.Artist) (application.Artist, error) {
	if err := a.repo.UpdateArtist(ctx, toPersistenceArtist(artist)); err != nil {
		return application.Artist{}, err
	}
	return a.GetArtist(ctx, artist.ID)
}

func (a *artistRepositoryAdapter) DeleteArtist(ctx context.Context, id string) error {
	return a.repo.DeleteArtist(ctx, id)
}

func (a *artistRepositoryAdapter) ListArtists(ctx context.Context, offset, limit int) ([]application.Artist, int, error) {
	models, total, err := a.repo.ListArtists(ctx, persistence.Page{Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	artists := make([]application.Artist, 0, len(models))
	for _, model := range models {
		artists = append(artists, toApplicationArtist(model))
	}
	return artists, total, nil
}

type slotRepositoryAdapter struct {
	repo persistence.AvailabilityRepository
}

func newSlotRepositoryAdapter(repo persistence.AvailabilityRepository) *slotRepositoryAdapter {
	return &slotRepositoryAdapter{repo: repo}
}

func (a *slotRepositoryAdapter) CreateSlot(ctx context.Context, slot application.AvailabilitySlot) (application.AvailabilitySlot, error) {
	if err := a.repo.CreateSlot(ctx, toPersistenceSlot(slot)); err != nil {
		return application.AvailabilitySlot{}, err
	}
	return a.GetSlot(ctx, slot.ID)
}

func (a *slotRepositoryAdapter) GetSlot(ctx context.Context, id string) (application.AvailabilitySlot, error) {
	stored, err := a.repo.GetSlot(ctx, id)
	if err != nil {
		return application.AvailabilitySlot{}, err
	}
	return toApplicationSlot(stored), nil
}

func (a *slotRepositoryAdapter) UpdateSlot(ctx context.Context, slot application.AvailabilitySlot) (application.AvailabilitySlot, error) {
	if err := a.repo.UpdateSlot(ctx, toPersistenceSlot(slot)); err != nil {
		return application.AvailabilitySlot{}, err
	}
	return a.GetSlot(ctx, slot.ID)
}

func (a *slotRepositoryAdapter) DeleteSlot(ctx context.Context, id string) error {
	return a.repo.DeleteSlot(ctx, id)
}

func (a *slotRepositoryAdapter) ListSlots(ctx context.Context, offset, limit int) ([]application.AvailabilitySlot, int, error) {
	models, total, err := a.repo.ListSlots(ctx, persistence.Page{Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	return toApplicationSlots(models), total, nil
}

func (a *slotRepositoryAdapter) ListSlotsByArtist(ctx context.Context, artistID string) ([]application.AvailabilitySlot, error) {
	models, err := a.repo.ListSlotsByArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return toApplicationSlots(models), nil
}

type momentRepositoryAdapter struct {
	repo persistence.MomentRepository
}

func newMomentRepositoryAdapter(repo persistence.MomentRepository) *momentRepositoryAdapter {
	return &momentRepositoryAdapter{repo: repo}
}

func (a *momentRepositoryAdapter) CreateMoment(ctx context.Context, moment application.Moment) (application.Moment, error) {
	if err := a.repo.CreateMoment(ctx, toPersistenceMoment(moment)); err != nil {
		return application.Moment{}, err
	}
	return a.GetMoment(ctx, moment.ID)
}

func (a *momentRepositoryAdapter) GetMoment(ctx context.Context, id string) (application.Moment, error) {
	stored, err := a.repo.GetMoment(ctx, id)
	if err != nil {
		return application.Moment{}, err
	}
	return toApplicationMoment(stored), nil
}

func (a *momentRepositoryAdapter) UpdateMoment(ctx context.Context, moment application.Moment) (application.Moment, error) {
	if err := a.repo.UpdateMoment(ctx, toPersistenceMoment(moment)); err != nil {
		return application.Moment{}, err
	}
	return a.GetMoment(ctx, moment.ID)
}

func (a *momentRepositoryAdapter) DeleteMoment(ctx context.Context, id string) error {
	return a.repo.DeleteMoment(ctx, id)
}

func (a *momentRepositoryAdapter) ListMoments(ctx context.Context, offset, limit int) ([]application.Moment, int, error) {
	models, total, err := a.repo.ListMoments(ctx, persistence.Page{Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	return toApplicationMoments(models), total, nil
}

func (a *momentRepositoryAdapter) ListMomentsByArtist(ctx context.Context, artistID string) ([]application.Moment, error) {
	models, err := a.repo.ListMomentsByArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return toApplicationMoments(models), nil
}

func toApplicationCategory(model persistence.Category) application.Category {
	return application.Category{
		ID:          model.ID,
		Type:        model.Type,
		Name:        model.Name,
		Description: cloneString(model.Description),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceCategory(category application.Category) persistence.Category {
	return persistence.Category{
		ID:          category.ID,
		Type:        category.Type,
		Name:        category.Name,
		Description: cloneString(category.Description),
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func toApplicationArtist(model persistence.Artist) application.Artist {
	return application.Artist{
		ID:         model.ID,
		Name:       model.Name,
		Tags:       append([]string(nil), model.Tags...),
		Rating:     model.Rating,
		Price:      model.Price,
		Location:   model.Location,
		CategoryID: model.CategoryID,
		ImageURL:   cloneString(model.ImageURL),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toPersistenceArtist(artist application.Artist) persistence.Artist {
	return persistence.Artist{
		ID:         artist.ID,
		Name:       artist.Name,
		Tags:       append([]string(nil), artist.Tags...),
		Rating:     artist.Rating,
		Price:      artist.Price,
		Location:   artist.Location,
		CategoryID: artist.CategoryID,
		ImageURL:   cloneString(artist.ImageURL),
		CreatedAt:  artist.CreatedAt,
		UpdatedAt:  artist.UpdatedAt,
	}
}

func toApplicationSlot(model persistence.AvailabilitySlot) application.AvailabilitySlot {
	return application.AvailabilitySlot{
		ID:        model.ID,
		ArtistID:  model.ArtistID,
		Start:     model.Start,
		End:       model.End,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toApplicationSlots(models []persistence.AvailabilitySlot) []application.AvailabilitySlot {
	slots := make([]application.AvailabilitySlot, 0, len(models))
	for _, model := range models {
		slots = append(slots, toApplicationSlot(model))
	}
	return slots
}

func toPersistenceSlot(slot application.AvailabilitySlot) persistence.AvailabilitySlot {
	return persistence.AvailabilitySlot{
		ID:        slot.ID,
		ArtistID:  slot.ArtistID,
		Start:     slot.Start,
		End:       slot.End,
		CreatedAt: slot.CreatedAt,
		UpdatedAt: slot.UpdatedAt,
	}
}

func toApplicationMoment(model persistence.Moment) application.Moment {
	return application.Moment{
		ID:         model.ID,
		ArtistID:   model.ArtistID,
		CategoryID: model.CategoryID,
		Date:       model.Date,
		StartTime:  model.StartTime,
		EndTime:    model.EndTime,
		Location:   model.Location,
		Message:    cloneString(model.Message),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toApplicationMoments(models []persistence.Moment) []application.Moment {
	moments := make([]application.Moment, 0, len(models))
	for _, model := range models {
		moments = append(moments, toApplicationMoment(model))
	}
	return moments
}

func toPersistenceMoment(moment application.Moment) persistence.Moment {
	return persistence.Moment{
		ID:         moment.ID,
		ArtistID:   moment.ArtistID,
		CategoryID: moment.CategoryID,
		Date:       moment.Date,
		StartTime:  moment.StartTime,
		EndTime:    moment.EndTime,
		Location:   moment.Location,
		Message:    cloneString(moment.Message),
		CreatedAt:  moment.CreatedAt,
		UpdatedAt:  moment.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
