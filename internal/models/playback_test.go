package models

import (
	"testing"
	"time"
)

func TestDuration_AsDuration(t *testing.T) {
	tests := []struct {
		name string
		in   Duration
		want time.Duration
	}{
		{name: "zero", in: Duration{}, want: 0},
		{name: "h m s", in: Duration{Hours: 1, Minutes: 2, Seconds: 3}, want: 3723 * time.Second},
		{name: "milliseconds ignored", in: Duration{Minutes: 1, Milliseconds: 999}, want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.AsDuration(); got != tt.want {
				t.Errorf("AsDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDuration_IsZero(t *testing.T) {
	if !(Duration{Milliseconds: 500}).IsZero() {
		t.Error("Expected duration with only milliseconds to be zero")
	}
	if (Duration{Seconds: 1}).IsZero() {
		t.Error("Expected one second to be non-zero")
	}
}

func TestPlaybackValueEquality(t *testing.T) {
	a := PlaybackInfo{Type: ItemMovie, ID: 7, Title: "Inception"}
	b := PlaybackInfo{Type: ItemMovie, ID: 7, Title: "Inception"}
	if a != b {
		t.Error("Expected identical PlaybackInfo values to be equal")
	}

	l1 := PlaybackLength{Speed: 1, Time: Duration{Seconds: 1}}
	l2 := PlaybackLength{Speed: 1, Time: Duration{Seconds: 2}}
	if l1 == l2 {
		t.Error("Expected PlaybackLength with different time to differ")
	}
	if !(PlaybackLength{}).Paused() {
		t.Error("Expected zero speed to be paused")
	}
}

func TestAction_String(t *testing.T) {
	if ActionUpdate.String() != "update" || ActionClear.String() != "clear" || ActionNone.String() != "none" {
		t.Error("Unexpected action string representation")
	}
}
