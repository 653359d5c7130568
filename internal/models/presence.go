package models

import "time"

// ResolvedMetadata holds the external identifiers and links resolved for a PlaybackInfo
type ResolvedMetadata struct {
	TMDBID    string `json:"tmdbId,omitempty"`
	IMDBID    string `json:"imdbId,omitempty"`
	MediaType string `json:"mediaType,omitempty"` // "movie" or "tv"
	ImageURL  string `json:"imageUrl,omitempty"`
	IMDBURL   string `json:"imdbUrl,omitempty"`
}

// Button is an external link shown under the presence
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// PresenceUpdate is the payload understood by the publisher.
// Start and End are nil when no time window should be displayed.
type PresenceUpdate struct {
	Details    string
	State      string
	Start      *time.Time
	End        *time.Time
	LargeImage string
	LargeText  string
	SmallImage string
	SmallText  string
	Buttons    []Button
}

// Action tells the publisher what to do with a mapped presence
type Action int

const (
	// ActionNone means nothing should be published
	ActionNone Action = iota
	// ActionUpdate publishes the PresenceUpdate
	ActionUpdate
	// ActionClear removes the current presence
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionClear:
		return "clear"
	default:
		return "none"
	}
}

// IMDBTitle is what an IMDb title page exposes through its Open Graph tags
type IMDBTitle struct {
	ID        string
	Title     string
	PosterURL string
}
