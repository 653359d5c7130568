package models

import "time"

// ItemType is the kind of item Kodi reports as currently active
type ItemType string

const (
	ItemMovie   ItemType = "movie"
	ItemEpisode ItemType = "episode"
	ItemChannel ItemType = "channel"
	ItemUnknown ItemType = "unknown"
)

// PlaybackInfo identifies the currently active item (Player.GetItem)
type PlaybackInfo struct {
	Type      ItemType `json:"type"`
	ID        int      `json:"id"`
	Title     string   `json:"title,omitempty"`
	ShowTitle string   `json:"showtitle,omitempty"`
	Season    int      `json:"season,omitempty"`
	Episode   int      `json:"episode,omitempty"`
	Label     string   `json:"label,omitempty"`
}

// Duration is Kodi's split representation of a playback position
type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	Milliseconds int `json:"milliseconds"`
}

// AsDuration converts the hours/minutes/seconds parts to a time.Duration.
// Milliseconds are ignored to keep the presence timestamps on whole seconds.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
}

// IsZero reports whether hours, minutes and seconds are all zero
func (d Duration) IsZero() bool {
	return d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// PlaybackLength holds the elapsed and total time plus the playback speed (Player.GetProperties)
type PlaybackLength struct {
	Speed     float64  `json:"speed"` // 0 means paused
	Time      Duration `json:"time"`
	TotalTime Duration `json:"totaltime"`
}

// Paused reports whether playback is paused
func (l PlaybackLength) Paused() bool {
	return l.Speed == 0
}
