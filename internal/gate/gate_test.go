package gate

import (
	"testing"
	"time"
)

func TestCheck(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name     string
		enrolled bool
		now      time.Time
		want     Verdict
	}{
		{name: "not enrolled", enrolled: false, now: start.Add(time.Minute), want: NotEnrolled},
		{name: "not enrolled wins over too early", enrolled: false, now: start.Add(-time.Hour), want: NotEnrolled},
		{name: "before window", enrolled: true, now: start.Add(-time.Second), want: TooEarly},
		{name: "exactly at start", enrolled: true, now: start, want: Eligible},
		{name: "inside window", enrolled: true, now: start.Add(time.Hour), want: Eligible},
		{name: "exactly at end", enrolled: true, now: end, want: Eligible},
		{name: "after window", enrolled: true, now: end.Add(time.Second), want: TooLate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Check(tc.enrolled, start, end, tc.now)
			if got != tc.want {
				t.Fatalf("Check() = %v, want %v", got, tc.want)
			}
		})
	}
}
