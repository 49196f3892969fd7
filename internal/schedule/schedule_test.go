package schedule

import (
	"testing"
	"time"
)

// mustDate parses a "YYYY-MM-DD HH:MM" timestamp in local time.
func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return ts
}

// =========================================================================
// IsDue TESTS
// =========================================================================

func TestIsDue_NeverWateredAlwaysDue(t *testing.T) {
	now := mustTime(t, "2024-01-04 09:00")

	for _, interval := range []int{1, 7, 365} {
		if !IsDue("", interval, now) {
			t.Errorf("IsDue(never watered, interval=%d) = false, want true", interval)
		}
	}
}

func TestIsDue_UnparsableDateFailsOpen(t *testing.T) {
	now := mustTime(t, "2024-01-04 09:00")

	// A corrupted last_watered value must not silently disable reminders.
	for _, bad := range []string{"not-a-date", "2024-13-40", "04/01/2024"} {
		if !IsDue(bad, 3, now) {
			t.Errorf("IsDue(%q) = false, want true (fail open)", bad)
		}
	}
}

func TestIsDue_BoundaryExactness(t *testing.T) {
	// Watered on Jan 1 with a 3-day interval: due on Jan 4, not on Jan 3.
	tests := []struct {
		now  string
		want bool
	}{
		{"2024-01-03 23:59", false}, // interval - 1 day, even late in the day
		{"2024-01-04 00:00", true},  // exactly last + interval
		{"2024-01-05 12:00", true},  // past due stays due
	}
	for _, tt := range tests {
		got := IsDue("2024-01-01", 3, mustTime(t, tt.now))
		if got != tt.want {
			t.Errorf("IsDue(2024-01-01, 3, %s) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestIsDue_TimeOfDayIrrelevant(t *testing.T) {
	// Early morning and late night on the due date both count as due.
	if !IsDue("2024-01-01", 1, mustTime(t, "2024-01-02 00:01")) {
		t.Error("IsDue at 00:01 on due date = false, want true")
	}
	if IsDue("2024-01-01", 1, mustTime(t, "2024-01-01 23:59")) {
		t.Error("IsDue at 23:59 on watering date = true, want false")
	}
}

func TestIsDue_MonthRollover(t *testing.T) {
	// AddDate handles month boundaries: Jan 30 + 3 days = Feb 2.
	if IsDue("2024-01-30", 3, mustTime(t, "2024-02-01 12:00")) {
		t.Error("IsDue on Feb 1 = true, want false (due Feb 2)")
	}
	if !IsDue("2024-01-30", 3, mustTime(t, "2024-02-02 12:00")) {
		t.Error("IsDue on Feb 2 = false, want true")
	}
}

// =========================================================================
// NextDue TESTS
// =========================================================================

func TestNextDue_KnownDate(t *testing.T) {
	next, ok := NextDue("2024-01-01", 3, time.Local)
	if !ok {
		t.Fatal("NextDue() ok = false, want true")
	}
	if got := next.Format(DateFormat); got != "2024-01-04" {
		t.Errorf("NextDue() = %s, want 2024-01-04", got)
	}
}

func TestNextDue_NeverWatered(t *testing.T) {
	if _, ok := NextDue("", 3, time.Local); ok {
		t.Error("NextDue(never watered) ok = true, want false")
	}
	if _, ok := NextDue("garbage", 3, time.Local); ok {
		t.Error("NextDue(unparsable) ok = true, want false")
	}
}

// =========================================================================
// WateredOn TESTS
// =========================================================================

func TestWateredOn(t *testing.T) {
	today := mustTime(t, "2024-01-04 19:00")

	if !WateredOn("2024-01-04", today) {
		t.Error("WateredOn(same day) = false, want true")
	}
	if WateredOn("2024-01-03", today) {
		t.Error("WateredOn(yesterday) = true, want false")
	}
	if WateredOn("", today) {
		t.Error("WateredOn(never watered) = true, want false")
	}
	if WateredOn("broken", today) {
		t.Error("WateredOn(unparsable) = true, want false")
	}
}

// =========================================================================
// AfterCutoff TESTS
// =========================================================================

func TestAfterCutoff(t *testing.T) {
	tests := []struct {
		now  string
		want bool
	}{
		{"2024-01-04 17:59", false},
		{"2024-01-04 18:00", true}, // inclusive boundary
		{"2024-01-04 18:01", true},
		{"2024-01-04 23:59", true},
		{"2024-01-04 00:00", false},
	}
	for _, tt := range tests {
		if got := AfterCutoff(mustTime(t, tt.now)); got != tt.want {
			t.Errorf("AfterCutoff(%s) = %v, want %v", tt.now, got, tt.want)
		}
	}
}
