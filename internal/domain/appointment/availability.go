package appointment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotMinutes is the fixed appointment slot length.
const SlotMinutes = 30

// Default working window used when a doctor has not configured one.
const (
	DefaultStart = "09:00"
	DefaultEnd   = "17:00"
)

// WeeklyAvailability is a doctor's recurring schedule: the weekdays they see
// patients and the daily working window. An empty day set means every day;
// empty window bounds fall back to the 09:00-17:00 default.
type WeeklyAvailability struct {
	Days  []string `json:"days"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

// SlotsOn enumerates the bookable slot start times for a calendar date as
// "HH:MM" strings, half-open: a 09:00-11:00 window yields 09:00, 09:30,
// 10:00 and 10:30. Returns an empty slice when the doctor does not work that
// weekday or the window is malformed.
func (w WeeklyAvailability) SlotsOn(date time.Time) []string {
	if !w.worksOn(date.Weekday()) {
		return []string{}
	}

	start, end := w.Start, w.End
	if start == "" {
		start = DefaultStart
	}
	if end == "" {
		end = DefaultEnd
	}

	startMin, err := parseClock(start)
	if err != nil {
		return []string{}
	}
	endMin, err := parseClock(end)
	if err != nil || endMin <= startMin {
		return []string{}
	}

	slots := []string{}
	for m := startMin; m+SlotMinutes <= endMin; m += SlotMinutes {
		slots = append(slots, formatClock(m))
	}
	return slots
}

func (w WeeklyAvailability) worksOn(day time.Weekday) bool {
	if len(w.Days) == 0 {
		return true
	}
	name := day.String()
	for _, d := range w.Days {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
