// Package presence turns Kodi playback state into the presence shown on Discord.
package presence

import (
	"fmt"
	"strings"
	"time"

	"github.com/Belphemur/KodiPresence/internal/models"
)

const (
	unknownTitle = "Unknown"
	pausedState  = "Paused..."

	largeTextMovie   = "Watching a movie on Kodi"
	largeTextEpisode = "Watching a TV Show on Kodi"
	largeTextChannel = "Watching Live TV on Kodi"

	smallImagePaused  = "pause"
	smallTextPaused   = "Paused"
	smallImagePlaying = "play"
	smallTextPlaying  = "Playing"

	imdbLabel = "IMDb"

	// DefaultLargeImage is the asset key uploaded to the Discord application
	DefaultLargeImage = "kodi"
)

// Options configures a Mapper
type Options struct {
	// IMDBButton adds an IMDb link button to movies and episodes when a URL was resolved.
	IMDBButton bool
	// DefaultImage is the asset key used when neither artwork nor a usable thumbnail exists.
	DefaultImage string
}

// Input is everything the mapper needs for one decision.
type Input struct {
	Info      models.PlaybackInfo
	Length    models.PlaybackLength
	Metadata  models.ResolvedMetadata
	Thumbnail string
	Start     time.Time
	End       time.Time
}

// Mapper selects the presentation template for a playback state
type Mapper struct {
	imdbButton   bool
	defaultImage string
}

func NewMapper(opts Options) *Mapper {
	if opts.DefaultImage == "" {
		opts.DefaultImage = DefaultLargeImage
	}
	return &Mapper{imdbButton: opts.IMDBButton, defaultImage: opts.DefaultImage}
}

// Map returns the action to take and, for ActionUpdate, the presence to publish.
// Item types other than movie, episode and channel map to ActionNone, except
// an unknown item on a stopped player which clears the presence.
func (m *Mapper) Map(in Input) (models.Action, models.PresenceUpdate) {
	switch in.Info.Type {
	case models.ItemMovie:
		return models.ActionUpdate, m.movie(in)
	case models.ItemEpisode:
		return models.ActionUpdate, m.episode(in)
	case models.ItemChannel:
		return models.ActionUpdate, m.channel(in)
	case models.ItemUnknown:
		if in.Length.Paused() {
			return models.ActionClear, models.PresenceUpdate{}
		}
	}
	return models.ActionNone, models.PresenceUpdate{}
}

func (m *Mapper) movie(in Input) models.PresenceUpdate {
	update := m.base(in, largeTextMovie)
	update.Details = orUnknown(in.Info.Title)
	if in.Length.Paused() {
		update.State = pausedState
	} else {
		setWindow(&update, in)
	}
	update.Buttons = m.buttons(in.Metadata)
	return update
}

func (m *Mapper) episode(in Input) models.PresenceUpdate {
	update := m.base(in, largeTextEpisode)
	update.Details = orUnknown(in.Info.ShowTitle)
	update.State = EpisodeLabel(in.Info)
	if !in.Length.Paused() {
		setWindow(&update, in)
	}
	update.Buttons = m.buttons(in.Metadata)
	return update
}

// channel omits the window while playing when Kodi reports no EPG timing at all.
func (m *Mapper) channel(in Input) models.PresenceUpdate {
	update := m.base(in, largeTextChannel)
	update.Details = orUnknown(in.Info.Label)
	update.State = orUnknown(in.Info.Title)
	if !in.Length.Paused() && !(in.Length.Time.IsZero() && in.Length.TotalTime.IsZero()) {
		setWindow(&update, in)
	}
	return update
}

func (m *Mapper) base(in Input, largeText string) models.PresenceUpdate {
	update := models.PresenceUpdate{
		LargeImage: m.largeImage(in),
		LargeText:  largeText,
		SmallImage: smallImagePlaying,
		SmallText:  smallTextPlaying,
	}
	if in.Length.Paused() {
		update.SmallImage = smallImagePaused
		update.SmallText = smallTextPaused
	}
	return update
}

func (m *Mapper) largeImage(in Input) string {
	if in.Metadata.ImageURL != "" {
		return in.Metadata.ImageURL
	}
	if strings.HasPrefix(in.Thumbnail, "http://") || strings.HasPrefix(in.Thumbnail, "https://") {
		return in.Thumbnail
	}
	return m.defaultImage
}

func (m *Mapper) buttons(meta models.ResolvedMetadata) []models.Button {
	if !m.imdbButton || meta.IMDBURL == "" {
		return nil
	}
	return []models.Button{{Label: imdbLabel, URL: meta.IMDBURL}}
}

// EpisodeLabel formats an episode as S02E05: Title
func EpisodeLabel(info models.PlaybackInfo) string {
	return fmt.Sprintf("S%02dE%02d: %s", info.Season, info.Episode, orUnknown(info.Title))
}

func setWindow(update *models.PresenceUpdate, in Input) {
	start, end := in.Start, in.End
	update.Start = &start
	update.End = &end
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownTitle
	}
	return s
}
