// Package reporting forwards unexpected publish failures to Sentry.
package reporting

import (
	"errors"
	"fmt"
	"time"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Options configures the Sentry client. An empty DSN disables reporting.
type Options struct {
	DSN         string
	Environment string
	Release     string

	beforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// Reporter captures errors on its own hub. The zero value and a nil *Reporter drop everything.
type Reporter struct {
	hub *sentry.Hub
}

// New creates a Reporter. It returns a disabled Reporter when opts.DSN is empty.
func New(opts Options) (*Reporter, error) {
	if opts.DSN == "" {
		return &Reporter{}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		BeforeSend:  opts.beforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	logger := config.GetLogger()
	logger.Info().Str("environment", opts.Environment).Msg("Sentry error reporting enabled")
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Enabled reports whether errors are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// Capture sends err with tags. Discord being closed or gone is expected and is never reported.
func (r *Reporter) Capture(err error, tags map[string]string) {
	if !r.Enabled() || err == nil || errors.Is(err, apperrors.ErrPipeClosed) || errors.Is(err, apperrors.ErrDiscordUnavailable) {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be delivered.
func (r *Reporter) Flush() {
	if !r.Enabled() {
		return
	}
	if !r.hub.Flush(flushTimeout) {
		logger := config.GetLogger()
		logger.Warn().Msg("Timed out flushing Sentry events")
	}
}
