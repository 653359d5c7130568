package discord

import (
	"unicode/utf8"

	"github.com/Belphemur/KodiPresence/internal/models"
)

// Discord rejects text fields outside 2..128 characters and allows at most two buttons.
const (
	maxTextLen = 128
	minTextLen = 2
	maxButtons = 2
)

// Activity is the rich presence payload of SET_ACTIVITY
type Activity struct {
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

// Timestamps are Unix epoch milliseconds
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ActivityFromUpdate converts a presence update, clipping fields to Discord's limits.
func ActivityFromUpdate(u models.PresenceUpdate) *Activity {
	a := &Activity{
		Details: text(u.Details),
		State:   text(u.State),
	}

	if u.Start != nil || u.End != nil {
		a.Timestamps = &Timestamps{}
		if u.Start != nil {
			a.Timestamps.Start = u.Start.UnixMilli()
		}
		if u.End != nil {
			a.Timestamps.End = u.End.UnixMilli()
		}
	}

	assets := Assets{
		LargeImage: u.LargeImage,
		LargeText:  text(u.LargeText),
		SmallImage: u.SmallImage,
		SmallText:  text(u.SmallText),
	}
	if assets != (Assets{}) {
		a.Assets = &assets
	}

	for i, b := range u.Buttons {
		if i == maxButtons {
			break
		}
		a.Buttons = append(a.Buttons, Button{Label: clip(b.Label, 32), URL: b.URL})
	}
	return a
}

// text clips s to maxTextLen and drops values too short to be accepted.
func text(s string) string {
	if utf8.RuneCountInString(s) < minTextLen {
		return ""
	}
	return clip(s, maxTextLen)
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
