package domain

import (
	"strings"
	"time"
)

// ConflictKind identifies which scheduling rule a change violates.
type ConflictKind string

const (
	ConflictTimeOrder    ConflictKind = "time_order"
	ConflictOverlap      ConflictKind = "overlap"
	ConflictDoubleBooked ConflictKind = "double_booked"
	ConflictVenue        ConflictKind = "venue"
	ConflictShowName     ConflictKind = "show_name"
)

var conflictMessages = map[ConflictKind]string{
	ConflictTimeOrder:    "The band's Start Time must occur before the End Time and both times can't be the same.",
	ConflictOverlap:      "The band's time slot can't overlap with another band in the show.",
	ConflictDoubleBooked: "The band's scheduled to play a different show on that date and their time slots can't overlap.",
	ConflictVenue:        "The show's Venue and Date can't be the same as another show already scheduled.",
	ConflictShowName:     "The show's Name and Date can't be the same as another show already scheduled.",
}

// ConflictError is returned when a show or band violates a scheduling rule.
// With is the ID of the conflicting record, zero for ConflictTimeOrder.
type ConflictError struct {
	Kind ConflictKind
	With int64
}

func (e *ConflictError) Error() string {
	return conflictMessages[e.Kind]
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// A band starting at or after 21:00 whose end time-of-day is
// at or before 02:00 finishes on the following day.
const (
	lateStartHour  = 21
	afterMidnightH = 2
)

// Slot is a half-open time interval [Start, End).
type Slot struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two slots share any instant. Touching slots do not overlap.
func Overlaps(a, b Slot) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// DateOf truncates t to midnight in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date, ignoring location.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AdjustBandTimes anchors the band's start and end times of day onto the show's
// date. Late sets that run past midnight get their end moved to the next day.
func AdjustBandTimes(band *Band, showDate time.Time) {
	day := DateOf(showDate)
	band.StartTime = atTimeOfDay(day, band.StartTime)
	band.EndTime = atTimeOfDay(day, band.EndTime)

	lateStart := day.Add(lateStartHour * time.Hour)
	afterMidnight := day.Add(afterMidnightH * time.Hour)
	if !band.StartTime.Before(lateStart) && !band.EndTime.After(afterMidnight) {
		band.EndTime = band.EndTime.AddDate(0, 0, 1)
	}
}

func atTimeOfDay(day, clock time.Time) time.Time {
	h, m, s := clock.Clock()
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, s, 0, day.Location())
}

// ValidateBandSlot checks a band's adjusted slot against the rest of its show's
// lineup and against bookings of the same band name on the show's date.
// The candidate's own stored record (same ID) is ignored in both lists.
func ValidateBandSlot(candidate *Band, showBands, sameNameBookings []*Band) error {
	if !candidate.StartTime.Before(candidate.EndTime) {
		return &ConflictError{Kind: ConflictTimeOrder}
	}
	slot := candidate.Slot()
	for _, other := range showBands {
		if isSameRecord(candidate.ID, other.ID) {
			continue
		}
		if Overlaps(slot, other.Slot()) {
			return &ConflictError{Kind: ConflictOverlap, With: other.ID}
		}
	}
	for _, other := range sameNameBookings {
		if isSameRecord(candidate.ID, other.ID) || !sameName(candidate.BandName, other.BandName) {
			continue
		}
		if Overlaps(slot, other.Slot()) {
			return &ConflictError{Kind: ConflictDoubleBooked, With: other.ID}
		}
	}
	return nil
}

// ValidateShow rejects a show whose venue or name is already taken on its date.
// Venue collisions are reported before name collisions.
func ValidateShow(candidate *Show, existing []*Show) error {
	for _, other := range existing {
		if isSameRecord(candidate.ID, other.ID) || !SameDate(candidate.Date, other.Date) {
			continue
		}
		if sameName(candidate.Venue, other.Venue) {
			return &ConflictError{Kind: ConflictVenue, With: other.ID}
		}
		if sameName(candidate.ShowName, other.ShowName) {
			return &ConflictError{Kind: ConflictShowName, With: other.ID}
		}
	}
	return nil
}

func isSameRecord(a, b int64) bool {
	return a != 0 && a == b
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
