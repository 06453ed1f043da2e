package appraisal

import (
	"strings"
	"time"
)

// CalculateDates derives the start and end dates of an appraisal cycle
// from its type name and optional range name. It is pure: no persistence,
// deterministic for fixed inputs. Year 0 means the current calendar year.
func CalculateDates(typeName, rangeName string, year int) (time.Time, time.Time, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	normalizedType := strings.ToLower(strings.TrimSpace(typeName))
	normalizedRange := normalizeRangeName(rangeName)

	// Family checks run in fixed priority order so a name like
	// "Tri-annual" matches the tri family before the annual fallback.
	for _, family := range rangeFamilies {
		if !family.matches(normalizedType) {
			continue
		}
		if normalizedRange == "" {
			return time.Time{}, time.Time{}, NewValidationError(KindMissingRange,
				"appraisal type %q requires a range name", typeName)
		}
		window, ok := family.windows[normalizedRange]
		if !ok {
			return time.Time{}, time.Time{}, NewValidationError(KindInvalidRange,
				"range %q is not valid for appraisal type %q", rangeName, typeName)
		}
		return window.dates(year)
	}

	if strings.Contains(normalizedType, "annual") || strings.Contains(normalizedType, "project") {
		return monthWindow{time.January, time.December}.dates(year)
	}

	return time.Time{}, time.Time{}, NewValidationError(KindUnknownType,
		"cannot derive dates for appraisal type %q", typeName)
}

var rangeAliases = map[string]string{
	"first":  "1st",
	"second": "2nd",
	"third":  "3rd",
	"fourth": "4th",
}

func normalizeRangeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := rangeAliases[normalized]; ok {
		return alias
	}
	return normalized
}

type monthWindow struct {
	start time.Month
	end   time.Month
}

func (w monthWindow) dates(year int) (time.Time, time.Time, error) {
	start := time.Date(year, w.start, 1, 0, 0, 0, 0, time.UTC)
	// Last day of the end month.
	end := time.Date(year, w.end+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return start, end, nil
}

type rangeFamily struct {
	substrings []string
	windows    map[string]monthWindow
}

func (f rangeFamily) matches(normalizedType string) bool {
	for _, sub := range f.substrings {
		if strings.Contains(normalizedType, sub) {
			return true
		}
	}
	return false
}

var rangeFamilies = []rangeFamily{
	{
		substrings: []string{"tri"},
		windows: map[string]monthWindow{
			"1st": {time.January, time.April},
			"2nd": {time.May, time.August},
			"3rd": {time.September, time.December},
		},
	},
	{
		substrings: []string{"half", "semi"},
		windows: map[string]monthWindow{
			"1st": {time.January, time.June},
			"2nd": {time.July, time.December},
		},
	},
	{
		substrings: []string{"quarter"},
		windows: map[string]monthWindow{
			"1st": {time.January, time.March},
			"2nd": {time.April, time.June},
			"3rd": {time.July, time.September},
			"4th": {time.October, time.December},
		},
	},
}
