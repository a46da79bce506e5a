package schedule

import (
	"strings"
	"testing"
)

func testTimetable(t *testing.T) Timetable {
	t.Helper()
	tt, err := Load(strings.NewReader(
		"Football,10:00,11:00\n" +
			"Basketball,10:30,12:00\n" +
			"Badminton,09:00,10:00\n" +
			"Chess,13:00,14:00\n"))
	if err != nil {
		t.Fatal(err)
	}
	return tt
}

func TestHasClash(t *testing.T) {
	tt := testTimetable(t)

	tests := []struct {
		name      string
		existing  string
		candidate string
		want      bool
	}{
		{"overlapping", "Football", "Basketball", true},
		{"back to back is no clash", "Badminton", "Football", false},
		{"disjoint", "Football", "Chess", false},
		{"same sport clashes with itself", "Football", "Football", true},
		{"symmetric", "Basketball", "Football", true},
	}
	for _, tt2 := range tests {
		t.Run(tt2.name, func(t *testing.T) {
			got, err := tt.HasClash(tt2.existing, tt2.candidate)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt2.want {
				t.Fatalf("HasClash(%s, %s) = %v, want %v", tt2.existing, tt2.candidate, got, tt2.want)
			}
		})
	}
}

func TestHasClash_UnknownSport(t *testing.T) {
	tt := testTimetable(t)
	if _, err := tt.HasClash("Football", "Curling"); err == nil {
		t.Fatal("expected error for unknown sport")
	}
}

func TestAnyClash(t *testing.T) {
	tt := testTimetable(t)

	clash, err := tt.AnyClash([]string{"Badminton", "Chess"}, "Football")
	if err != nil {
		t.Fatal(err)
	}
	if clash {
		t.Fatal("no registration overlaps Football")
	}

	clash, err = tt.AnyClash([]string{"Badminton", "Basketball"}, "Football")
	if err != nil {
		t.Fatal(err)
	}
	if !clash {
		t.Fatal("Basketball overlaps Football")
	}

	// No registrations at all.
	clash, err = tt.AnyClash(nil, "Football")
	if err != nil || clash {
		t.Fatalf("empty registrations: clash=%v err=%v", clash, err)
	}
}

func TestLoadRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"wrong column count", "Football,10:00\n"},
		{"bad time", "Football,25:99,11:00\n"},
		{"ends before start", "Football,11:00,10:00\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tc.csv)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestDefaultTimetableParses(t *testing.T) {
	tt := Default()
	if len(tt) == 0 {
		t.Fatal("embedded timetable is empty")
	}
	if _, ok := tt["Football"]; !ok {
		t.Fatal("embedded timetable missing Football")
	}
}
