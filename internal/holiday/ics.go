package holiday

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/username/holiday-assistant/pkg/dateutil"
	"go.uber.org/zap"
)

const icsProductID = "-//holiday-assistant//holidays//EN"

// ParseICS reads all-day VEVENTs as holidays.
// SUMMARY becomes the name and DESCRIPTION the description. Events without
// a usable start date are logged and skipped.
func ParseICS(r io.Reader, logger *zap.Logger) ([]Holiday, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	var holidays []Holiday
	for _, ev := range cal.Events() {
		summary := ev.GetProperty(ical.ComponentPropertySummary)
		if summary == nil || strings.TrimSpace(summary.Value) == "" {
			logger.Warn("Skipping event without summary", zap.String("uid", ev.Id()))
			continue
		}

		start, err := ev.GetAllDayStartAt()
		if err != nil {
			start, err = ev.GetStartAt()
		}
		if err != nil {
			logger.Warn("Skipping event without start date",
				zap.String("uid", ev.Id()),
				zap.Error(err))
			continue
		}

		h := Holiday{
			Date: dateutil.CalendarDate(start),
			Name: summary.Value,
		}
		if desc := ev.GetProperty(ical.ComponentPropertyDescription); desc != nil {
			h.Description = desc.Value
		}
		holidays = append(holidays, h)
	}

	return holidays, nil
}

// ExportICS writes holidays as an iCalendar feed of all-day events
func ExportICS(w io.Writer, holidays []Holiday) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := time.Now().UTC()
	for _, h := range holidays {
		uid := fmt.Sprintf("%s-%s@holiday-assistant", h.Date.Format("20060102"), slug(h.Name))

		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(h.Date)
		ev.SetAllDayEndAt(h.Date.AddDate(0, 0, 1))
		ev.SetSummary(h.Name)
		if h.Description != "" {
			ev.SetDescription(h.Description)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
