package domain

import "time"

// DateRange is the half-open interval [Start, End) of calendar dates at UTC midnight.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether date falls inside the range.
func (r DateRange) Contains(date time.Time) bool {
	return !date.Before(r.Start) && date.Before(r.End)
}

// Days is the number of calendar days covered, never negative. Both bounds
// are UTC midnights, so whole Unix days are exact for windows of any length.
func (r DateRange) Days() int {
	if !r.End.After(r.Start) {
		return 0
	}
	return int((r.End.Unix() - r.Start.Unix()) / 86400)
}

type PeriodCadence string

const (
	PeriodCadenceDay    PeriodCadence = "day"
	PeriodCadenceWeek   PeriodCadence = "week"
	PeriodCadenceMonth  PeriodCadence = "month"
	PeriodCadenceYear   PeriodCadence = "year"
	PeriodCadenceCustom PeriodCadence = "custom"
)

// Period is a resolved reporting window. Cadence picks the size of the
// previous comparable window.
type Period struct {
	DateRange
	Cadence PeriodCadence `json:"cadence"`
}

type PeriodKind string

const (
	PeriodToday     PeriodKind = "today"
	PeriodThisWeek  PeriodKind = "this-week"
	PeriodThisMonth PeriodKind = "this-month"
	PeriodThisYear  PeriodKind = "this-year"
	PeriodRange     PeriodKind = "range"
	PeriodLastNDays PeriodKind = "last-n-days"
)

// PeriodRequest describes a window before it is resolved against a current date.
// Start and End are inclusive dates for PeriodRange; Days is used by PeriodLastNDays.
type PeriodRequest struct {
	Kind  PeriodKind
	Start time.Time
	End   time.Time
	Days  int
}

func NamedPeriod(kind PeriodKind) PeriodRequest {
	return PeriodRequest{Kind: kind}
}

func ExplicitRange(start, end time.Time) PeriodRequest {
	return PeriodRequest{Kind: PeriodRange, Start: start, End: end}
}

func LastNDays(n int) PeriodRequest {
	return PeriodRequest{Kind: PeriodLastNDays, Days: n}
}
