package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/util"
)

// ResolvePeriod turns a period request into a concrete half-open window,
// relative to today. Month, week and year windows snap to calendar boundaries.
func ResolvePeriod(req domain.PeriodRequest, today time.Time) (domain.Period, error) {
	today = util.DateOf(today)

	switch req.Kind {
	case domain.PeriodToday:
		return newPeriod(today, today.AddDate(0, 0, 1), domain.PeriodCadenceDay), nil
	case domain.PeriodThisWeek:
		start := util.StartOfWeek(today)
		return newPeriod(start, start.AddDate(0, 0, 7), domain.PeriodCadenceWeek), nil
	case domain.PeriodThisMonth:
		return MonthPeriod(today.Year(), today.Month()), nil
	case domain.PeriodThisYear:
		return YearPeriod(today.Year()), nil
	case domain.PeriodRange:
		if req.Start.IsZero() || req.End.IsZero() {
			return domain.Period{}, fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidRange)
		}
		start, end := util.DateOf(req.Start), util.DateOf(req.End)
		if start.After(end) {
			return domain.Period{}, fmt.Errorf("%w: start %s is after end %s",
				domain.ErrInvalidRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
		}
		return newPeriod(start, end.AddDate(0, 0, 1), domain.PeriodCadenceCustom), nil
	case domain.PeriodLastNDays:
		if req.Days < 1 {
			return domain.Period{}, fmt.Errorf("%w: day count must be at least 1, got %d", domain.ErrInvalidRange, req.Days)
		}
		end := today.AddDate(0, 0, 1)
		return newPeriod(end.AddDate(0, 0, -req.Days), end, domain.PeriodCadenceCustom), nil
	}

	return domain.Period{}, fmt.Errorf("%w: unknown period %q", domain.ErrInvalidRange, req.Kind)
}

// PreviousPeriod returns the comparable window immediately before p: the previous
// calendar month or year for calendar windows, otherwise a window of the same
// number of days ending where p starts.
func PreviousPeriod(p domain.Period) domain.Period {
	switch p.Cadence {
	case domain.PeriodCadenceMonth:
		year, month := util.PreviousMonth(p.Start.Year(), int(p.Start.Month()))
		return MonthPeriod(year, time.Month(month))
	case domain.PeriodCadenceYear:
		return YearPeriod(p.Start.Year() - 1)
	}
	return newPeriod(p.Start.AddDate(0, 0, -p.Days()), p.Start, p.Cadence)
}

// MonthPeriod returns the calendar month window
func MonthPeriod(year int, month time.Month) domain.Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return newPeriod(start, start.AddDate(0, 1, 0), domain.PeriodCadenceMonth)
}

// YearPeriod returns the calendar year window
func YearPeriod(year int) domain.Period {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return newPeriod(start, start.AddDate(1, 0, 0), domain.PeriodCadenceYear)
}

// BudgetPeriod returns the month or year window containing date, matching the budget cadence.
func BudgetPeriod(cadence domain.BudgetCadence, date time.Time) domain.Period {
	if cadence == domain.BudgetCadenceYearly {
		return YearPeriod(date.Year())
	}
	return MonthPeriod(date.Year(), date.Month())
}

func newPeriod(start, end time.Time, cadence domain.PeriodCadence) domain.Period {
	return domain.Period{
		DateRange: domain.DateRange{Start: start, End: end},
		Cadence:   cadence,
	}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", domain.ErrInvalidRange, s)
	}
	return t, nil
}

// ParsePeriodRequest builds a request from loosely typed input such as query
// parameters or CLI flags. With no kind, start/end select an explicit range and
// days selects a rolling window; with neither, fallback is returned.
func ParsePeriodRequest(kind, start, end, days string, fallback domain.PeriodRequest) (domain.PeriodRequest, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		switch {
		case start != "" || end != "":
			kind = string(domain.PeriodRange)
		case days != "":
			kind = string(domain.PeriodLastNDays)
		default:
			return fallback, nil
		}
	}

	switch domain.PeriodKind(kind) {
	case domain.PeriodToday, domain.PeriodThisWeek, domain.PeriodThisMonth, domain.PeriodThisYear:
		return domain.NamedPeriod(domain.PeriodKind(kind)), nil
	case domain.PeriodRange:
		startDate, err := ParseDate(start)
		if err != nil {
			return domain.PeriodRequest{}, err
		}
		endDate, err := ParseDate(end)
		if err != nil {
			return domain.PeriodRequest{}, err
		}
		return domain.ExplicitRange(startDate, endDate), nil
	case domain.PeriodLastNDays:
		n, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil {
			return domain.PeriodRequest{}, fmt.Errorf("%w: %q is not a day count", domain.ErrInvalidRange, days)
		}
		return domain.LastNDays(n), nil
	}

	return domain.PeriodRequest{}, fmt.Errorf("%w: unknown period %q", domain.ErrInvalidRange, kind)
}
