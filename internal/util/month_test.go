package util

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPreviousMonth_SameYear(t *testing.T) {
	tests := []struct {
		year      int
		month     int
		wantYear  int
		wantMonth int
	}{
		{2026, 6, 2026, 5},   // June -> May
		{2026, 12, 2026, 11}, // Dec -> Nov
		{2026, 2, 2026, 1},   // Feb -> Jan
	}

	for _, tt := range tests {
		gotYear, gotMonth := PreviousMonth(tt.year, tt.month)
		if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
			t.Errorf("PreviousMonth(%d, %d) = (%d, %d), want (%d, %d)",
				tt.year, tt.month, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestPreviousMonth_YearBoundary(t *testing.T) {
	gotYear, gotMonth := PreviousMonth(2026, 1)
	if gotYear != 2025 || gotMonth != 12 {
		t.Errorf("PreviousMonth(2026, 1) = (%d, %d), want (2025, 12)", gotYear, gotMonth)
	}
}

func TestCalculateActualDate(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  time.Time
	}{
		{"regular day", 2024, time.March, 15, date(2024, time.March, 15)},
		{"31st into February of leap year", 2024, time.February, 31, date(2024, time.February, 29)},
		{"31st into February", 2023, time.February, 31, date(2023, time.February, 28)},
		{"31st into April", 2024, time.April, 31, date(2024, time.April, 30)},
		{"month 13 rolls into January", 2024, 13, 31, date(2025, time.January, 31)},
		{"month 14 rolls into February", 2024, 14, 30, date(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateActualDate(tt.year, tt.month, tt.day)
			if !got.Equal(tt.want) {
				t.Errorf("CalculateActualDate(%d, %d, %d) = %s, want %s",
					tt.year, tt.month, tt.day, got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2024-01-17 is a Wednesday
	got := StartOfWeek(date(2024, time.January, 17))
	if !got.Equal(date(2024, time.January, 15)) {
		t.Errorf("StartOfWeek = %s, want 2024-01-15", got.Format(time.DateOnly))
	}

	// Sunday belongs to the week that started the previous Monday
	got = StartOfWeek(date(2024, time.January, 21))
	if !got.Equal(date(2024, time.January, 15)) {
		t.Errorf("StartOfWeek(Sunday) = %s, want 2024-01-15", got.Format(time.DateOnly))
	}
}

func TestDateOf_DropsClock(t *testing.T) {
	in := time.Date(2024, time.May, 3, 23, 59, 1, 5, time.UTC)
	if got := DateOf(in); !got.Equal(date(2024, time.May, 3)) {
		t.Errorf("DateOf = %s, want 2024-05-03", got)
	}
}

func TestMonthsBetween(t *testing.T) {
	if got := MonthsBetween(date(2023, time.November, 30), date(2024, time.February, 1)); got != 3 {
		t.Errorf("MonthsBetween = %d, want 3", got)
	}
	if got := MonthsBetween(date(2024, time.March, 1), date(2024, time.January, 1)); got != -2 {
		t.Errorf("MonthsBetween = %d, want -2", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	if got := DaysInMonth(2024, time.February); got != 29 {
		t.Errorf("DaysInMonth(2024, Feb) = %d, want 29", got)
	}
	if got := DaysInMonth(2023, time.December); got != 31 {
		t.Errorf("DaysInMonth(2023, Dec) = %d, want 31", got)
	}
}
