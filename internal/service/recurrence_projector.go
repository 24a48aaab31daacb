package service

import (
	"iter"
	"slices"
	"time"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/util"
)

// Recurring transactions repeat once per calendar month on the anchor's day of month.
const recurrenceStepMonths = 1

// ProjectRecurring yields virtual occurrences of the recurring transactions that fall
// inside p and strictly after each transaction's own date. Stored transactions are
// never modified; each occurrence is a fresh copy flagged IsProjected. The sequence
// can be ranged over any number of times.
func ProjectRecurring(p domain.Period, txs []*domain.Transaction) iter.Seq[*domain.Transaction] {
	return func(yield func(*domain.Transaction) bool) {
		for _, tx := range txs {
			if !tx.IsRecurring || tx.IsProjected {
				continue
			}
			for date := range occurrenceDates(util.DateOf(tx.OccurredOn), p.DateRange) {
				if !yield(projectedCopy(tx, date)) {
					return
				}
			}
		}
	}
}

func occurrenceDates(anchor time.Time, r domain.DateRange) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		from := anchor
		if r.Start.After(from) {
			from = r.Start
		}

		day := anchor.Day()
		for k := util.MonthsBetween(anchor, from); ; k += recurrenceStepMonths {
			date := util.CalculateActualDate(anchor.Year(), anchor.Month()+time.Month(k), day)
			if !date.Before(r.End) {
				return
			}
			if !date.After(anchor) || date.Before(r.Start) {
				continue
			}
			if !yield(date) {
				return
			}
		}
	}
}

func projectedCopy(tx *domain.Transaction, date time.Time) *domain.Transaction {
	occ := *tx
	occ.OccurredOn = date
	occ.IsProjected = true
	occ.Tags = slices.Clone(tx.Tags)
	return &occ
}

// WithProjections merges stored transactions with projected occurrences of the
// recurring ones, ordered by date with stored entries before projected ones on the same day.
func WithProjections(p domain.Period, stored, recurring []*domain.Transaction) []*domain.Transaction {
	out := slices.Clone(stored)
	for occ := range ProjectRecurring(p, recurring) {
		out = append(out, occ)
	}
	slices.SortStableFunc(out, func(a, b *domain.Transaction) int {
		if c := a.OccurredOn.Compare(b.OccurredOn); c != 0 {
			return c
		}
		if a.IsProjected != b.IsProjected {
			if a.IsProjected {
				return 1
			}
			return -1
		}
		return 0
	})
	return out
}
