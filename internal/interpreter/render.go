package interpreter

import (
	"fmt"
	"strings"

	"github.com/username/holiday-assistant/internal/holiday"
	"github.com/username/holiday-assistant/pkg/dateutil"
)

const (
	msgBadMonth = "I couldn't understand the month format. Please try again."
	msgBadDate  = "I couldn't understand the date format. Please try again."
	msgBadYear  = "I couldn't understand the year format. Please try again."
)

// renderList renders "<header>:" followed by one "- DD Month: Name" line per holiday,
// or "No holidays found in <period>" when the list is empty
func renderList(period string, holidays []holiday.Holiday) string {
	if len(holidays) == 0 {
		return "No holidays found in " + period
	}

	var b strings.Builder
	b.WriteString("Holidays in " + period + ":")
	for _, h := range holidays {
		fmt.Fprintf(&b, "\n- %s: %s", dateutil.FormatDayMonth(h.Date), h.Name)
	}
	return b.String()
}

func renderDate(intent Intent, h *holiday.Holiday) string {
	when := dateutil.FormatLong(intent.Date())
	if h == nil {
		return fmt.Sprintf("No, %s is not a holiday.", when)
	}
	return fmt.Sprintf("Yes, %s is %s. %s", when, h.Name, h.Description)
}

func renderFailure(f Failure) string {
	switch f {
	case FailureMonth:
		return msgBadMonth
	case FailureYear:
		return msgBadYear
	default:
		return msgBadDate
	}
}
