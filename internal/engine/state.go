package engine

import (
	"time"

	"github.com/Belphemur/KodiPresence/internal/models"
)

// State is the last (info, length) pair that went through the publish pipeline
type State struct {
	LastInfo   models.PlaybackInfo
	LastLength models.PlaybackLength
	HasLast    bool
}

// Changed reports whether the pair differs from the recorded one by value.
func (s State) Changed(info models.PlaybackInfo, length models.PlaybackLength) bool {
	return !s.HasLast || info != s.LastInfo || length != s.LastLength
}

// Record stores the pair as the last one seen by the pipeline.
func (s *State) Record(info models.PlaybackInfo, length models.PlaybackLength) {
	s.LastInfo = info
	s.LastLength = length
	s.HasLast = true
}

// gate remembers what Discord currently shows. Kodi's elapsed time moves on
// every poll, so without it a playing item would be republished each cycle.
type gate struct {
	info      models.PlaybackInfo
	speed     float64
	start     time.Time
	has       bool
	partial   bool
	tolerance time.Duration
}

// unchanged reports whether the presence already reflects info at speed.
// While playing, a projected start that moved past the tolerance (a seek) counts as a change.
// A presence published with partial metadata is never considered up to date.
func (g *gate) unchanged(info models.PlaybackInfo, speed float64, start time.Time) bool {
	if !g.has || g.partial || info != g.info || speed != g.speed {
		return false
	}
	if speed == 0 {
		return true
	}
	drift := start.Sub(g.start)
	if drift < 0 {
		drift = -drift
	}
	return drift <= g.tolerance
}

func (g *gate) record(info models.PlaybackInfo, speed float64, start time.Time, partial bool) {
	g.info = info
	g.partial = partial
	g.speed = speed
	g.start = start
	g.has = true
}

func (g *gate) reset() {
	g.has = false
}
