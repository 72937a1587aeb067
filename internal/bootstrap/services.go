package bootstrap

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/artist-booking/internal/application"
	"github.com/example/artist-booking/internal/persistence"
)

// Services bundles the application services built over one store.
type Services struct {
	Categories   *application.CategoryService
	Artists      *application.ArtistService
	Availability *application.AvailabilityService
	Resolver     *application.ResolverService
	Moments      *application.MomentService
}

// Dependencies carries the collaborators shared by every service. Zero values
// fall back to uuid identifiers, time.Now, no-op recorders and
// application.DefaultPublishTimeout.
type Dependencies struct {
	IDGenerator    func() string
	Now            func() time.Time
	Logger         *slog.Logger
	Recorder       application.Recorder
	Publisher      application.EventPublisher
	PublishTimeout time.Duration
	MaxPageSize    int
}

// NewServices builds the application services over store.
func NewServices(store persistence.Store, deps Dependencies) *Services {
	if deps.IDGenerator == nil {
		deps.IDGenerator = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}

	opts := []application.ServiceOption{
		application.WithLogger(deps.Logger),
		application.WithMaxPageSize(deps.MaxPageSize),
		application.WithPublishTimeout(deps.PublishTimeout),
	}
	if deps.Recorder != nil {
		opts = append(opts, application.WithRecorder(deps.Recorder))
	}
	if deps.Publisher != nil {
		opts = append(opts, application.WithPublisher(deps.Publisher))
	}

	categories := newCategoryRepositoryAdapter(store)
	artists := newArtistRepositoryAdapter(store)
	slots := newSlotRepositoryAdapter(store)
	moments := newMomentRepositoryAdapter(store)

	resolver := application.NewResolverService(artists, slots, moments, deps.Now, opts...)
	return &Services{
		Categories:   application.NewCategoryService(categories, deps.IDGenerator, deps.Now, opts...),
		Artists:      application.NewArtistService(artists, categories, deps.IDGenerator, deps.Now, opts...),
		Availability: application.NewAvailabilityService(slots, artists, resolver, deps.IDGenerator, deps.Now, opts...),
		Resolver:     resolver,
		Moments:      application.NewMomentService(moments, artists, categories, deps.IDGenerator, deps.Now, opts...),
	}
}
