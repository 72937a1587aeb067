package application

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPublishTimeout bounds a single event delivery after a commit.
const DefaultPublishTimeout = 2 * time.Second

// ServiceOption customises optional service collaborators.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger      *slog.Logger
	recorder    Recorder
	publisher      EventPublisher
	publishTimeout time.Duration
	maxPageSize    int
}

// WithLogger sets the base logger. slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) ServiceOption {
	return func(o *serviceOptions) {
		o.recorder = recorder
	}
}

// WithPublisher sets the event publisher used after successful writes.
func WithPublisher(publisher EventPublisher) ServiceOption {
	return func(o *serviceOptions) {
		o.publisher = publisher
	}
}

// WithPublishTimeout bounds how long a write waits for its event to be
// delivered. Non-positive values select DefaultPublishTimeout.
func WithPublishTimeout(timeout time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		o.publishTimeout = timeout
	}
}

// WithMaxPageSize caps the limit accepted by paginated listings.
func WithMaxPageSize(size int) ServiceOption {
	return func(o *serviceOptions) {
		o.maxPageSize = size
	}
}

func buildOptions(opts []ServiceOption) serviceOptions {
	options := serviceOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	options.logger = defaultLogger(options.logger)
	if options.recorder == nil {
		options.recorder = noopRecorder{}
	}
	if options.publishTimeout <= 0 {
		options.publishTimeout = DefaultPublishTimeout
	}
	if options.publisher == nil {
		options.publisher = noopPublisher{}
	} else {
		options.publisher = timeoutPublisher{next: options.publisher, timeout: options.publishTimeout}
	}
	return options
}

// timeoutPublisher detaches delivery from the caller's cancellation, since
// the write has already committed, and caps it at timeout.
type timeoutPublisher struct {
	next    EventPublisher
	timeout time.Duration
}

func (p timeoutPublisher) Publish(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	return p.next.Publish(ctx, event)
}

func defaults(idGenerator func() string, now func() time.Time) (func() string, func() time.Time) {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return idGenerator, now
}
