package interpreter

import "time"

// Kind identifies the shape of a parsed question
type Kind int

const (
	KindNoMatch Kind = iota
	KindYear
	KindMonth
	KindDate
	KindParseFailure
)

func (k Kind) String() string {
	switch k {
	case KindYear:
		return "year"
	case KindMonth:
		return "month"
	case KindDate:
		return "date"
	case KindParseFailure:
		return "parse_failure"
	default:
		return "no_match"
	}
}

// Failure says which captured field could not be understood
type Failure int

const (
	FailureNone Failure = iota
	FailureMonth
	FailureDate
	FailureYear
)

// Intent is the structured form of a question.
//
// Which fields are set depends on Kind:
//   - KindYear: Year
//   - KindMonth: Year, Month, MonthLabel
//   - KindDate: Year, Month, Day
//   - KindParseFailure: Failure
type Intent struct {
	Kind       Kind
	Year       int
	Month      time.Month
	Day        int
	MonthLabel string // month token as typed, capitalized
	Failure    Failure
}

// Date returns the calendar date of a KindDate intent
func (i Intent) Date() time.Time {
	return time.Date(i.Year, i.Month, i.Day, 0, 0, 0, 0, time.UTC)
}

// rawMatch holds the tokens captured by a rule before normalization
type rawMatch struct {
	month string
	day   string
	year  string
}
