package presence

import (
	"time"

	"github.com/Belphemur/KodiPresence/internal/models"
)

// Window projects the playback position onto wall-clock time:
// start = now - elapsed, end = start + total.
func Window(now time.Time, elapsed, total models.Duration) (start, end time.Time) {
	start = now.Add(-elapsed.AsDuration())
	end = start.Add(total.AsDuration())
	return start, end
}
