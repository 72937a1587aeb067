package testfixtures

import (
	"testing"
	"time"

	"github.com/example/artist-booking/internal/application"
	"github.com/example/artist-booking/internal/bootstrap"
	"github.com/example/artist-booking/internal/persistence"
)

// ServiceFactory builds application services over a store with
// deterministic identifiers and time.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Publisher   application.EventPublisher
	Recorder    application.Recorder
	MaxPageSize int
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory returns a factory whose clock steps one second per
// reading, starting at ReferenceTime.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewSteppingClock(time.Time{}, time.Second),
		IDGenerator: NewIDGenerator("id"),
		MaxPageSize: 100,
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithPublisher routes service events to publisher.
func WithPublisher(publisher application.EventPublisher) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Publisher = publisher
	}
}

// WithRecorder routes service metrics to recorder.
func WithRecorder(recorder application.Recorder) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Recorder = recorder
	}
}

// Services builds the full service set over store.
func (f *ServiceFactory) Services(store persistence.Store) *bootstrap.Services {
	return bootstrap.NewServices(store, bootstrap.Dependencies{
		IDGenerator: f.IDGenerator.Next,
		Now:         f.Clock.Now,
		Logger:      DiscardLogger(),
		Recorder:    f.Recorder,
		Publisher:   f.Publisher,
		MaxPageSize: f.MaxPageSize,
	})
}

// NewServicesForBackend opens a fresh store and builds services over it.
func (f *ServiceFactory) NewServicesForBackend(tb testing.TB, backend Backend) (*bootstrap.Services, persistence.Store) {
	tb.Helper()
	store := NewStore(tb, backend)
	return f.Services(store), store
}
