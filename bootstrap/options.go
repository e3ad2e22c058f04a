package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/userservice/component"
	"github.com/kbukum/userservice/logger"
)

// Option customizes NewApp. Options do not depend on the config type.
type Option func(*settings)

type settings struct {
	log          *logger.Logger
	shutdown     time.Duration
	summary      io.Writer
	registryOpts []component.RegistryOption
}

const defaultShutdownTimeout = 15 * time.Second

func collect(opts []Option) settings {
	s := settings{shutdown: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the logger built from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds OnStop hooks plus component shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.shutdown = d
		}
	}
}

// WithSummaryOutput sends the startup summary somewhere other than stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) { s.summary = w }
}

// WithRegistryOptions passes options through to component.NewRegistry.
func WithRegistryOptions(opts ...component.RegistryOption) Option {
	return func(s *settings) { s.registryOpts = append(s.registryOpts, opts...) }
}
