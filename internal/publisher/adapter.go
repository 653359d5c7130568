// Package publisher pushes mapped presence updates to Discord and recovers lost connections.
package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/Belphemur/KodiPresence/internal/discord"
	"github.com/Belphemur/KodiPresence/internal/metrics"
	"github.com/Belphemur/KodiPresence/internal/models"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Transport is the presence connection, implemented by *discord.Client
type Transport interface {
	Connect(ctx context.Context) error
	Connected() bool
	SetActivity(ctx context.Context, activity *discord.Activity) error
	Close() error
}

// Adapter publishes presence updates. When the transport reports a closed pipe
// it reconnects and resends the update once.
type Adapter struct {
	transport Transport
	retry     retrypolicy.RetryPolicy[any]
}

func New(transport Transport) *Adapter {
	return &Adapter{
		transport: transport,
		retry: retrypolicy.NewBuilder[any]().
			HandleErrors(apperrors.ErrPipeClosed).
			WithMaxRetries(1).
			ReturnLastFailure().
			Build(),
	}
}

// Update publishes the presence.
func (a *Adapter) Update(ctx context.Context, update models.PresenceUpdate) error {
	return a.send(ctx, models.ActionUpdate, discord.ActivityFromUpdate(update))
}

// Clear removes the presence.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.send(ctx, models.ActionClear, nil)
}

// Close releases the transport; Discord drops the presence of a closed connection.
func (a *Adapter) Close() error {
	return a.transport.Close()
}

func (a *Adapter) send(ctx context.Context, action models.Action, activity *discord.Activity) error {
	logger := config.GetLogger()

	if !a.transport.Connected() {
		if err := a.transport.Connect(ctx); err != nil {
			metrics.PublishTotal.WithLabelValues(action.String(), "error").Inc()
			return fmt.Errorf("%w: connect: %w", apperrors.ErrDiscordUnavailable, err)
		}
	}

	err := failsafe.With(a.retry).WithContext(ctx).Run(func() error {
		err := a.transport.SetActivity(ctx, activity)
		if !errors.Is(err, apperrors.ErrPipeClosed) {
			return err
		}

		logger.Info().Err(err).Msg("Connection to Discord lost. Attempting to reconnect...")
		metrics.ReconnectsTotal.Inc()
		if cerr := a.transport.Connect(ctx); cerr != nil {
			return fmt.Errorf("%w: reconnect: %w", apperrors.ErrDiscordUnavailable, cerr)
		}
		return err
	})

	if err != nil {
		metrics.PublishTotal.WithLabelValues(action.String(), "error").Inc()
		return fmt.Errorf("%s presence: %w", action, err)
	}
	metrics.PublishTotal.WithLabelValues(action.String(), "success").Inc()
	return nil
}
