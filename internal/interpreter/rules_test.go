package interpreter

import (
	"testing"
	"time"
)

var pinnedNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Intent
	}{
		// year-only
		{"four digit year", "holidays in 2024", Intent{Kind: KindYear, Year: 2024}},
		{"two digit year", "holidays in 24", Intent{Kind: KindYear, Year: 2024}},
		{"two digit year far future", "holidays in 45", Intent{Kind: KindYear, Year: 2045}},
		{"two digit numeral is a year", "holidays in 12", Intent{Kind: KindYear, Year: 2012}},
		{"punctuation and case", "What are the Holidays in 2025?", Intent{Kind: KindYear, Year: 2025}},
		{"extra whitespace", "  holidays   in\t2025  ", Intent{Kind: KindYear, Year: 2025}},
		{"non-month word after year", "holidays in 2025 and 2026", Intent{Kind: KindYear, Year: 2025}},

		// month+year
		{"month word then year", "holidays in jan 2024", Intent{Kind: KindMonth, Year: 2024, Month: time.January, MonthLabel: "Jan"}},
		{"year then month word", "holidays in 2024 jan", Intent{Kind: KindMonth, Year: 2024, Month: time.January, MonthLabel: "Jan"}},
		{"two digit year after month", "holidays in jan 24", Intent{Kind: KindMonth, Year: 2024, Month: time.January, MonthLabel: "Jan"}},
		{"full month name", "Holidays in January 2025", Intent{Kind: KindMonth, Year: 2025, Month: time.January, MonthLabel: "January"}},
		{"numeric month then year", "holidays in 12 2024", Intent{Kind: KindMonth, Year: 2024, Month: time.December, MonthLabel: "12"}},
		{"year then numeric month", "holidays in 2024 12", Intent{Kind: KindMonth, Year: 2024, Month: time.December, MonthLabel: "12"}},
		{"two short numerals", "holidays in 1 24", Intent{Kind: KindMonth, Year: 2024, Month: time.January, MonthLabel: "1"}},
		{"short year then month word", "holidays in 25 oct", Intent{Kind: KindMonth, Year: 2025, Month: time.October, MonthLabel: "Oct"}},
		{"month 13 before year", "holidays in 13 2024", failure(FailureMonth)},
		{"month 13 after year", "holidays in 2024 13", failure(FailureMonth)},
		{"unknown month word with year", "holidays in india 2025", failure(FailureMonth)},

		// month-only
		{"month word defaults year", "holidays in jan", Intent{Kind: KindMonth, Year: 2025, Month: time.January, MonthLabel: "Jan"}},
		{"month in a sentence", "list all holidays in december please", Intent{Kind: KindMonth, Year: 2025, Month: time.December, MonthLabel: "December"}},
		{"single digit month", "holidays in 5", Intent{Kind: KindMonth, Year: 2025, Month: time.May, MonthLabel: "5"}},
		{"month zero", "holidays in 0", failure(FailureMonth)},
		{"unknown month word", "holidays in xyz", failure(FailureMonth)},
		{"too short to be a month", "holidays in ja", failure(FailureMonth)},

		// specific date
		{"month day year", "is jan 26 2025 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"day month year", "is 26 jan 2025 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"without leading is", "january 26 2025 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"year defaults", "is jan 26 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"two digit year", "is 26 jan 25 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"with article", "Is Jan 26 2025 a holiday?", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"dashes", "is 26-01-2025 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"slashes", "is 26/01/25 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"single digit day", "is oct 2 2024 holiday", Intent{Kind: KindDate, Year: 2024, Month: time.October, Day: 2}},
		{"february 30", "is feb 30 2025 holiday", failure(FailureDate)},
		{"leap day in common year", "is 29 feb 2025 holiday", failure(FailureDate)},
		{"leap day in leap year", "is 29 feb 2024 holiday", Intent{Kind: KindDate, Year: 2024, Month: time.February, Day: 29}},
		{"numeric february 31", "is 31-02-2025 holiday", failure(FailureDate)},
		{"numeric month 13", "is 26/13/2025 holiday", failure(FailureDate)},
		{"unknown month word", "is foo 26 2025 holiday", failure(FailureDate)},
		{"day zero", "is jan 0 2025 holiday", failure(FailureDate)},
		{"numeric month then day", "is 12 25 2025 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.December, Day: 25}},
		{"single digit numeric month", "is 1 26 2025 holiday", Intent{Kind: KindDate, Year: 2025, Month: time.January, Day: 26}},
		{"numeric month 13 then day", "is 13 25 2025 holiday", failure(FailureDate)},
		{"spaced numerals read month first", "is 26 12 2025 holiday", failure(FailureDate)},

		// no match
		{"policy question", "what is the leave policy", Intent{Kind: KindNoMatch}},
		{"empty", "", Intent{Kind: KindNoMatch}},
		{"keyword alone", "holidays", Intent{Kind: KindNoMatch}},
		{"plural after date", "is jan 26 holidays", Intent{Kind: KindNoMatch}},
		{"year without holiday keyword", "what happened in 2024", Intent{Kind: KindNoMatch}},
		{"day with article only", "is 26 a holiday", Intent{Kind: KindNoMatch}},
		{"day with an", "is 8 an holiday", Intent{Kind: KindNoMatch}},
		{"mixed separators", "is 26-01/2025 holiday", Intent{Kind: KindNoMatch}},
		{"mixed separators reversed", "is 26/01-2025 holiday", Intent{Kind: KindNoMatch}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.question, pinnedNow)

			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.question, got, tt.want)
			}
		})
	}
}

func TestParse_RulePriority(t *testing.T) {
	tests := []struct {
		question string
		wantRule string
	}{
		{"holidays in 2024", "year"},
		{"holidays in 2024 jan", "month_year"},
		{"holidays in jan 2024", "month_year"},
		{"holidays in jan", "month"},
		{"is jan 26 2025 holiday", "date_month_day"},
		{"is 26 jan 2025 holiday", "date_day_month"},
		{"is 26-01-2025 holiday", "date_numeric"},
		{"is 12 25 2025 holiday", "date_month_day"},
		{"is 26 a holiday", "none"},
		{"what is the leave policy", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			_, rule := classify(tt.question, pinnedNow)

			if rule != tt.wantRule {
				t.Errorf("classify(%q) rule = %q, want %q", tt.question, rule, tt.wantRule)
			}
		})
	}
}

// A structural match that fails semantically must not fall through to a
// later rule, even one that would have succeeded.
func TestParse_FirstStructuralMatchIsTerminal(t *testing.T) {
	got := Parse("is foo 26 2025 holiday 26 jan 2025 holiday", pinnedNow)

	if got != failure(FailureDate) {
		t.Errorf("Parse() = %+v, want date failure", got)
	}
}

func TestParse_TwoDigitYearConsistency(t *testing.T) {
	pairs := [][2]string{
		{"holidays in jan 24", "holidays in jan 2024"},
		{"holidays in 24", "holidays in 2024"},
		{"is 26 jan 25 holiday", "is 26 jan 2025 holiday"},
	}

	for _, p := range pairs {
		short, long := Parse(p[0], pinnedNow), Parse(p[1], pinnedNow)
		if short.Year != long.Year || short.Kind != long.Kind || short.Month != long.Month || short.Day != long.Day {
			t.Errorf("Parse(%q) = %+v, Parse(%q) = %+v, want same date fields", p[0], short, p[1], long)
		}
	}
}

func TestLookupMonth(t *testing.T) {
	tests := []struct {
		token  string
		want   time.Month
		wantOK bool
	}{
		{"jan", time.January, true},
		{"january", time.January, true},
		{"sept", time.September, true},
		{"december", time.December, true},
		{"1", time.January, true},
		{"01", time.January, true},
		{"12", time.December, true},
		{"13", 0, false},
		{"0", 0, false},
		{"ja", 0, false},
		{"foo", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := lookupMonth(tt.token)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("lookupMonth(%q) = (%v, %v), want (%v, %v)", tt.token, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	got := normalizeText("  Is JAN 26, 2025 a Holiday?! ")
	want := "is jan 26 2025 a holiday"
	if got != want {
		t.Errorf("normalizeText() = %q, want %q", got, want)
	}
}
