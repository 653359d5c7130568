// Package engine runs the poll, diff, map and publish loop.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/Belphemur/KodiPresence/internal/kodi"
	"github.com/Belphemur/KodiPresence/internal/metrics"
	"github.com/Belphemur/KodiPresence/internal/models"
	"github.com/Belphemur/KodiPresence/internal/presence"
)

// Player is the Kodi side of the loop
type Player interface {
	FetchInfo(ctx context.Context) (models.PlaybackInfo, error)
	FetchLength(ctx context.Context) (models.PlaybackLength, error)
	Thumbnail(ctx context.Context) (string, error)
}

// Resolver returns the metadata of an item. A non-nil error may come with a partial result.
type Resolver interface {
	Resolve(ctx context.Context, info models.PlaybackInfo) (models.ResolvedMetadata, error)
}

// Publisher is the Discord side of the loop
type Publisher interface {
	Update(ctx context.Context, update models.PresenceUpdate) error
	Clear(ctx context.Context) error
}

// StatusReporter is told whether the last poll reached Kodi
type StatusReporter interface {
	SetPlayerReachable(reachable bool)
}

// ErrorReporter receives publish failures other than Discord being unreachable
type ErrorReporter interface {
	Capture(err error, tags map[string]string)
}

// Options tunes the loop. Zero values use the defaults of a stock setup.
type Options struct {
	IdleInterval  time.Duration
	SeekTolerance time.Duration
	Sleep         kodi.Sleeper
	Now           func() time.Time
	Status        StatusReporter
	Errors        ErrorReporter
}

// Engine owns the loop state. It is not safe for concurrent use.
type Engine struct {
	player    Player
	resolver  Resolver
	mapper    *presence.Mapper
	publisher Publisher

	idle     time.Duration
	sleep    kodi.Sleeper
	now      func() time.Time
	status   StatusReporter
	reporter ErrorReporter

	state State
	gate  gate
}

func New(player Player, resolver Resolver, mapper *presence.Mapper, publisher Publisher, opts Options) *Engine {
	e := &Engine{
		player:    player,
		resolver:  resolver,
		mapper:    mapper,
		publisher: publisher,
		idle:      opts.IdleInterval,
		sleep:     opts.Sleep,
		now:       opts.Now,
		status:    opts.Status,
		reporter:  opts.Errors,
		gate:      gate{tolerance: opts.SeekTolerance},
	}
	if e.idle <= 0 {
		e.idle = 3 * time.Second
	}
	if e.gate.tolerance <= 0 {
		e.gate.tolerance = 10 * time.Second
	}
	if e.sleep == nil {
		e.sleep = kodi.SleepContext
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// State returns a copy of the last pair that went through the pipeline.
func (e *Engine) State() State {
	return e.state
}

// Run polls until ctx is cancelled and then returns nil.
func (e *Engine) Run(ctx context.Context) error {
	logger := config.GetLogger()
	logger.Info().Msg("Watching Kodi for playback changes")

	for {
		if err := e.Step(ctx); err != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("Program interrupted by user. Exiting...")
				return nil
			}
			return err
		}
	}
}

// Step runs one iteration: fetch both halves of the state, then either publish
// the change or sleep the idle interval. It only returns an error when ctx is done.
func (e *Engine) Step(ctx context.Context) error {
	logger := config.GetLogger()

	info, err := e.player.FetchInfo(ctx)
	if err != nil {
		return e.skip(ctx, "info", err)
	}
	length, err := e.player.FetchLength(ctx)
	if err != nil {
		return e.skip(ctx, "length", err)
	}
	e.setReachable(true)

	logger.Debug().Interface("info", info).Interface("length", length).Msg("Fetched playback state")

	if !e.state.Changed(info, length) {
		return e.sleep(ctx, e.idle)
	}

	e.publish(ctx, info, length)
	e.state.Record(info, length)
	return ctx.Err()
}

func (e *Engine) skip(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.setReachable(false)
	logger := config.GetLogger()
	logger.Debug().Err(err).Str("fetch", what).Msg("Skipping cycle, Kodi did not answer")
	return nil
}

func (e *Engine) setReachable(ok bool) {
	if ok {
		metrics.PlayerReachable.Set(1)
	} else {
		metrics.PlayerReachable.Set(0)
	}
	if e.status != nil {
		e.status.SetPlayerReachable(ok)
	}
}

// publish resolves, maps and sends one state change.
func (e *Engine) publish(ctx context.Context, info models.PlaybackInfo, length models.PlaybackLength) {
	logger := config.GetLogger()

	start, end := presence.Window(e.now(), length.Time, length.TotalTime)
	if e.gate.unchanged(info, length.Speed, start) {
		logger.Debug().Str("type", string(info.Type)).Msg("Presence already up to date")
		metrics.PublishTotal.WithLabelValues(models.ActionUpdate.String(), "skipped").Inc()
		return
	}

	var meta models.ResolvedMetadata
	partial := false
	if e.resolver != nil {
		var err error
		meta, err = e.resolver.Resolve(ctx, info)
		if err != nil {
			partial = true
			logger.Warn().Err(err).Str("type", string(info.Type)).Int("id", info.ID).Msg("Metadata lookup failed, continuing with what was resolved")
		}
	}

	var thumbnail string
	if meta.ImageURL == "" && info.Type != models.ItemUnknown {
		thumb, err := e.player.Thumbnail(ctx)
		if err != nil {
			logger.Debug().Err(err).Msg("Failed to fetch Kodi thumbnail")
		}
		thumbnail = thumb
	}

	action, update := e.mapper.Map(presence.Input{
		Info:      info,
		Length:    length,
		Metadata:  meta,
		Thumbnail: thumbnail,
		Start:     start,
		End:       end,
	})

	var err error
	switch action {
	case models.ActionUpdate:
		err = e.publisher.Update(ctx, update)
		if err == nil {
			logger.Info().
				Str("type", string(info.Type)).
				Str("details", update.Details).
				Str("state", update.State).
				Bool("paused", length.Paused()).
				Msg("Updated presence")
		}
	case models.ActionClear:
		logger.Info().Msg("Nothing is playing. Clearing presence...")
		err = e.publisher.Clear(ctx)
	default:
		logger.Debug().Str("type", string(info.Type)).Float64("speed", length.Speed).Msg("Nothing to show for this item")
		metrics.PublishTotal.WithLabelValues(action.String(), "skipped").Inc()
		return
	}

	if err != nil {
		switch {
		case ctx.Err() != nil:
		case errors.Is(err, apperrors.ErrDiscordUnavailable), errors.Is(err, apperrors.ErrPipeClosed):
			logger.Warn().Err(err).Str("action", action.String()).Msg("Discord is not reachable, presence not published")
		default:
			logger.Error().Err(err).Str("action", action.String()).Msg("Failed to publish presence")
			e.report(err, action, info)
		}
		e.gate.reset()
		return
	}
	e.gate.record(info, length.Speed, start, partial)
}

func (e *Engine) report(err error, action models.Action, info models.PlaybackInfo) {
	if e.reporter == nil || errors.Is(err, context.Canceled) {
		return
	}
	e.reporter.Capture(err, map[string]string{
		"action":    action.String(),
		"item_type": string(info.Type),
	})
}
