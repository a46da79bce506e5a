// Package schedule decides whether two sports' timeslots collide on the
// tournament day. The timetable is a static sport → [start, end) table
// loaded from CSV; a default is embedded in the binary.
package schedule

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

//go:embed timetable.csv
var embedded embed.FS

// All slots are placed on one fixed reference date so they compare as plain
// instants.
var referenceDate = time.Date(2023, time.March, 4, 0, 0, 0, 0, time.UTC)

// Slot is one sport's block on the tournament day.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two slots collide. Back-to-back slots do not.
func (s Slot) Overlaps(other Slot) bool {
	return !(!s.End.After(other.Start) || !other.End.After(s.Start))
}

// Timetable maps sport name to its timeslot.
type Timetable map[string]Slot

// Load parses CSV rows of the form "sport,HH:MM,HH:MM".
func Load(r io.Reader) (Timetable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read timetable: %w", err)
	}
	tt := make(Timetable, len(records))
	for i, rec := range records {
		if len(rec) != 3 {
			return nil, fmt.Errorf("timetable row %d: want 3 columns, got %d", i+1, len(rec))
		}
		start, err := parseClock(rec[1])
		if err != nil {
			return nil, fmt.Errorf("timetable row %d: %w", i+1, err)
		}
		end, err := parseClock(rec[2])
		if err != nil {
			return nil, fmt.Errorf("timetable row %d: %w", i+1, err)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("timetable row %d: %s ends before it starts", i+1, rec[0])
		}
		tt[rec[0]] = Slot{Start: start, End: end}
	}
	return tt, nil
}

// LoadFile loads a timetable from disk.
func LoadFile(path string) (Timetable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timetable: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded tournament timetable.
func Default() Timetable {
	f, err := embedded.Open("timetable.csv")
	if err != nil {
		panic("embedded timetable missing: " + err.Error())
	}
	defer f.Close()
	tt, err := Load(f)
	if err != nil {
		panic("embedded timetable invalid: " + err.Error())
	}
	return tt
}

// HasClash reports whether two sports' slots overlap. Unknown sports are an
// error; the timetable must cover every registered sport.
func (t Timetable) HasClash(existingSport, candidateSport string) (bool, error) {
	a, ok := t[existingSport]
	if !ok {
		return false, fmt.Errorf("sport %q is not in the timetable", existingSport)
	}
	b, ok := t[candidateSport]
	if !ok {
		return false, fmt.Errorf("sport %q is not in the timetable", candidateSport)
	}
	return a.Overlaps(b), nil
}

// AnyClash checks the candidate against each existing registration and
// short-circuits on the first overlap.
func (t Timetable) AnyClash(existingSports []string, candidateSport string) (bool, error) {
	for _, s := range existingSports {
		clash, err := t.HasClash(s, candidateSport)
		if err != nil {
			return false, err
		}
		if clash {
			return true, nil
		}
	}
	return false, nil
}

func parseClock(s string) (time.Time, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", s, err)
	}
	return referenceDate.Add(
		time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute,
	), nil
}
