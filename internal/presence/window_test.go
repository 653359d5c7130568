package presence

import (
	"testing"
	"time"

	"github.com/Belphemur/KodiPresence/internal/models"
)

func TestWindow(t *testing.T) {
	now := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		elapsed   models.Duration
		total     models.Duration
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "one hour in",
			elapsed:   models.Duration{Hours: 1, Minutes: 2, Seconds: 3},
			total:     models.Duration{Hours: 1, Minutes: 30},
			wantStart: now.Add(-3723 * time.Second),
			wantEnd:   now.Add(-3723 * time.Second).Add(5400 * time.Second),
		},
		{
			name:      "just started",
			elapsed:   models.Duration{},
			total:     models.Duration{Minutes: 42},
			wantStart: now,
			wantEnd:   now.Add(42 * time.Minute),
		},
		{
			name:      "milliseconds do not shift the window",
			elapsed:   models.Duration{Seconds: 10, Milliseconds: 900},
			total:     models.Duration{Seconds: 20, Milliseconds: 100},
			wantStart: now.Add(-10 * time.Second),
			wantEnd:   now.Add(10 * time.Second),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(now, tt.elapsed, tt.total)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}
