package appraisal

import (
	"errors"
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDatesQuarterly(t *testing.T) {
	cases := []struct {
		rangeName  string
		start, end time.Time
	}{
		{"1st", date(2024, time.January, 1), date(2024, time.March, 31)},
		{"2nd", date(2024, time.April, 1), date(2024, time.June, 30)},
		{"3rd", date(2024, time.July, 1), date(2024, time.September, 30)},
		{"4th", date(2024, time.October, 1), date(2024, time.December, 31)},
	}
	for _, c := range cases {
		start, end, err := CalculateDates("Quarterly", c.rangeName, 2024)
		if err != nil {
			t.Fatalf("quarterly %s: %v", c.rangeName, err)
		}
		if !start.Equal(c.start) || !end.Equal(c.end) {
			t.Fatalf("quarterly %s: got %s to %s", c.rangeName, start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
	}
}

func TestCalculateDatesRangeAliases(t *testing.T) {
	start, end, err := CalculateDates("Quarterly", "second", 2024)
	if err != nil {
		t.Fatalf("alias second: %v", err)
	}
	if !start.Equal(date(2024, time.April, 1)) || !end.Equal(date(2024, time.June, 30)) {
		t.Fatalf("alias second: got %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
}

func TestCalculateDatesHalfYearly(t *testing.T) {
	start, end, err := CalculateDates("Half-yearly", "2nd", 2025)
	if err != nil {
		t.Fatalf("half-yearly 2nd: %v", err)
	}
	if !start.Equal(date(2025, time.July, 1)) || !end.Equal(date(2025, time.December, 31)) {
		t.Fatalf("half-yearly 2nd: got %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	// "semi" matches the same family.
	start, end, err = CalculateDates("Semi-annual", "1st", 2025)
	if err != nil {
		t.Fatalf("semi-annual 1st: %v", err)
	}
	if !start.Equal(date(2025, time.January, 1)) || !end.Equal(date(2025, time.June, 30)) {
		t.Fatalf("semi-annual 1st: got %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
}

func TestCalculateDatesTriAnnualBeatsAnnual(t *testing.T) {
	// "Tri-annual" contains "annual" but the tri family wins on priority.
	start, end, err := CalculateDates("Tri-annual", "2nd", 2024)
	if err != nil {
		t.Fatalf("tri-annual 2nd: %v", err)
	}
	if !start.Equal(date(2024, time.May, 1)) || !end.Equal(date(2024, time.August, 31)) {
		t.Fatalf("tri-annual 2nd: got %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	start, end, err = CalculateDates("Tri-annual", "3rd", 2024)
	if err != nil {
		t.Fatalf("tri-annual 3rd: %v", err)
	}
	if !start.Equal(date(2024, time.September, 1)) || !end.Equal(date(2024, time.December, 31)) {
		t.Fatalf("tri-annual 3rd: got %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
}

func TestCalculateDatesAnnualAndProject(t *testing.T) {
	for _, typeName := range []string{"Annual", "Project-end"} {
		start, end, err := CalculateDates(typeName, "", 2024)
		if err != nil {
			t.Fatalf("%s: %v", typeName, err)
		}
		if !start.Equal(date(2024, time.January, 1)) || !end.Equal(date(2024, time.December, 31)) {
			t.Fatalf("%s: got %s to %s", typeName, start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
	}
}

func TestCalculateDatesMissingRange(t *testing.T) {
	_, _, err := CalculateDates("Half-yearly", "", 0)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Kind != KindMissingRange {
		t.Fatalf("expected missing-range error, got %v", err)
	}
}

func TestCalculateDatesInvalidRange(t *testing.T) {
	_, _, err := CalculateDates("Quarterly", "5th", 2024)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Kind != KindInvalidRange {
		t.Fatalf("expected invalid-range error, got %v", err)
	}

	_, _, err = CalculateDates("Half-yearly", "3rd", 2024)
	if !errors.As(err, &validationErr) || validationErr.Kind != KindInvalidRange {
		t.Fatalf("expected invalid-range error for half-yearly 3rd, got %v", err)
	}
}

func TestCalculateDatesUnknownType(t *testing.T) {
	_, _, err := CalculateDates("Monthly", "", 2024)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Kind != KindUnknownType {
		t.Fatalf("expected unknown-type error, got %v", err)
	}
}

func TestCalculateDatesDefaultsToCurrentYear(t *testing.T) {
	start, _, err := CalculateDates("Annual", "", 0)
	if err != nil {
		t.Fatalf("annual default year: %v", err)
	}
	if start.Year() != time.Now().Year() {
		t.Fatalf("expected current year %d, got %d", time.Now().Year(), start.Year())
	}
}
