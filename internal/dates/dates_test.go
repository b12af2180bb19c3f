package dates

import (
	"testing"
	"time"
)

var now = time.Date(2025, time.June, 10, 15, 30, 0, 0, time.UTC)

func TestNormalizeMonthDay(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"short month", "Jun 14", time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)},
		{"full month", "June 14", time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)},
		{"weekday prefix", "Sat, Jun 14, 7:00 PM", time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)},
		{"lowercase", "sep 5", time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)},
		{"abbreviated dot", "Dec. 31", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, now)
			if !got.Equal(tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizePastMonthRollsForward(t *testing.T) {
	// January has already passed in June; an upcoming-events card saying
	// "Jan 5" means next January.
	got := Normalize("Jan 5", now)
	want := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Normalize(\"Jan 5\") = %v, want %v", got, want)
	}
}

func TestNormalizeLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-07-01", time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-07-01T19:30:00Z", time.Date(2025, time.July, 1, 19, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := Normalize(tt.raw, now)
		if !got.Equal(tt.want) {
			t.Errorf("Normalize(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeFallback(t *testing.T) {
	for _, raw := range []string{"", "See website for dates", "next summer", "Feb 31"} {
		got := Normalize(raw, now)
		if !got.Equal(now) {
			t.Errorf("Normalize(%q) = %v, want capture time %v", raw, got, now)
		}
	}
}
