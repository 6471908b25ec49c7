package interpreter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/username/holiday-assistant/internal/holiday"
	"go.uber.org/zap"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func testCalendar() []holiday.Holiday {
	return []holiday.Holiday{
		{Date: day(2025, time.August, 15), Name: "Independence Day", Description: "Public holiday"},
		{Date: day(2025, time.January, 26), Name: "Republic Day", Description: "Public holiday"},
		{Date: day(2025, time.January, 1), Name: "New Year's Day", Description: "Public holiday"},
		{Date: day(2025, time.January, 14), Name: "Makar Sankranti / Pongal", Description: "Cultural holiday"},
		{Date: day(2024, time.January, 26), Name: "Republic Day", Description: "Public holiday"},
		{Date: day(2024, time.December, 25), Name: "Christmas", Description: "Public holiday"},
	}
}

// countingStore records how many lookups reached the calendar
type countingStore struct {
	holiday.Store
	calls atomic.Int32
}

func (c *countingStore) HolidaysInMonth(ctx context.Context, year int, month time.Month) ([]holiday.Holiday, error) {
	c.calls.Add(1)
	return c.Store.HolidaysInMonth(ctx, year, month)
}

func (c *countingStore) HolidaysInYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	c.calls.Add(1)
	return c.Store.HolidaysInYear(ctx, year)
}

func (c *countingStore) HolidayForDate(ctx context.Context, date time.Time) (*holiday.Holiday, error) {
	c.calls.Add(1)
	return c.Store.HolidayForDate(ctx, date)
}

// brokenStore fails every lookup
type brokenStore struct{ err error }

func (b brokenStore) HolidaysInMonth(context.Context, int, time.Month) ([]holiday.Holiday, error) {
	return nil, b.err
}

func (b brokenStore) HolidaysInYear(context.Context, int) ([]holiday.Holiday, error) {
	return nil, b.err
}

func (b brokenStore) HolidayForDate(context.Context, time.Time) (*holiday.Holiday, error) {
	return nil, b.err
}

func newTestInterpreter() (*Interpreter, *countingStore) {
	store := &countingStore{Store: holiday.NewMemoryStore(testCalendar(), zap.NewNop())}
	in := New(store, zap.NewNop())
	in.now = func() time.Time { return pinnedNow }
	return in, store
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{
			name:     "date is a holiday",
			question: "Is Jan 26 2025 a holiday?",
			want:     "Yes, January 26, 2025 is Republic Day. Public holiday",
		},
		{
			name:     "day month order",
			question: "is 26 jan 2025 holiday",
			want:     "Yes, January 26, 2025 is Republic Day. Public holiday",
		},
		{
			name:     "numeric with dashes",
			question: "is 26-01-2025 holiday",
			want:     "Yes, January 26, 2025 is Republic Day. Public holiday",
		},
		{
			name:     "numeric with slashes",
			question: "is 26/01/2025 holiday",
			want:     "Yes, January 26, 2025 is Republic Day. Public holiday",
		},
		{
			name:     "numeric month before day",
			question: "is 12 25 2024 holiday",
			want:     "Yes, December 25, 2024 is Christmas. Public holiday",
		},
		{
			name:     "date is not a holiday",
			question: "is jan 27 2025 holiday",
			want:     "No, January 27, 2025 is not a holiday.",
		},
		{
			name:     "date without year uses current year",
			question: "is jan 26 holiday",
			want:     "Yes, January 26, 2025 is Republic Day. Public holiday",
		},
		{
			name:     "year listing is ascending",
			question: "holidays in 2025",
			want: "Holidays in 2025:\n" +
				"- 01 January: New Year's Day\n" +
				"- 14 January: Makar Sankranti / Pongal\n" +
				"- 26 January: Republic Day\n" +
				"- 15 August: Independence Day",
		},
		{
			name:     "two digit year listing",
			question: "holidays in 24",
			want:     "Holidays in 2024:\n- 26 January: Republic Day\n- 25 December: Christmas",
		},
		{
			name:     "empty year",
			question: "holidays in 2030",
			want:     "No holidays found in 2030",
		},
		{
			name:     "month with year",
			question: "holidays in jan 2025",
			want: "Holidays in Jan 2025:\n" +
				"- 01 January: New Year's Day\n" +
				"- 14 January: Makar Sankranti / Pongal\n" +
				"- 26 January: Republic Day",
		},
		{
			name:     "year before month",
			question: "holidays in 2024 december",
			want:     "Holidays in December 2024:\n- 25 December: Christmas",
		},
		{
			name:     "numeric month label",
			question: "holidays in 12 2024",
			want:     "Holidays in 12 2024:\n- 25 December: Christmas",
		},
		{
			name:     "month without year",
			question: "holidays in august",
			want:     "Holidays in August 2025:\n- 15 August: Independence Day",
		},
		{
			name:     "empty month",
			question: "holidays in feb 2025",
			want:     "No holidays found in Feb 2025",
		},
		{
			name:     "bad month",
			question: "holidays in 13 2024",
			want:     "I couldn't understand the month format. Please try again.",
		},
		{
			name:     "bad date",
			question: "is feb 31 2025 holiday",
			want:     "I couldn't understand the date format. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newTestInterpreter()

			got, err := in.Interpret(context.Background(), tt.question)
			if err != nil {
				t.Fatalf("Interpret(%q) error = %v", tt.question, err)
			}
			if !got.Matched {
				t.Fatalf("Interpret(%q) Matched = false, want true", tt.question)
			}
			if got.Text != tt.want {
				t.Errorf("Interpret(%q) = %q, want %q", tt.question, got.Text, tt.want)
			}
		})
	}
}

func TestInterpret_ShortAndLongYearAgree(t *testing.T) {
	in, _ := newTestInterpreter()
	ctx := context.Background()

	short, err := in.Interpret(ctx, "holidays in jan 24")
	if err != nil {
		t.Fatal(err)
	}
	long, err := in.Interpret(ctx, "holidays in jan 2024")
	if err != nil {
		t.Fatal(err)
	}

	if short.Text != long.Text {
		t.Errorf("short year answer = %q, long year answer = %q", short.Text, long.Text)
	}
}

func TestInterpret_OrderIndependentMonthYear(t *testing.T) {
	in, _ := newTestInterpreter()
	ctx := context.Background()

	a, err := in.Interpret(ctx, "holidays in jan 2025")
	if err != nil {
		t.Fatal(err)
	}
	b, err := in.Interpret(ctx, "holidays in 2025 jan")
	if err != nil {
		t.Fatal(err)
	}

	if a.Intent != b.Intent {
		t.Errorf("intents differ: %+v vs %+v", a.Intent, b.Intent)
	}
	if a.Text != b.Text {
		t.Errorf("answers differ: %q vs %q", a.Text, b.Text)
	}
}

func TestInterpret_NoMatch(t *testing.T) {
	questions := []string{
		"what is the leave policy",
		"how many sick days do I get",
		"",
	}

	for _, q := range questions {
		in, store := newTestInterpreter()

		got, err := in.Interpret(context.Background(), q)
		if err != nil {
			t.Fatalf("Interpret(%q) error = %v", q, err)
		}
		if got.Matched {
			t.Errorf("Interpret(%q) Matched = true, want false", q)
		}
		if got.Text != "" {
			t.Errorf("Interpret(%q) Text = %q, want empty", q, got.Text)
		}
		if n := store.calls.Load(); n != 0 {
			t.Errorf("Interpret(%q) made %d store calls, want 0", q, n)
		}
	}
}

func TestInterpret_ParseFailureSkipsStore(t *testing.T) {
	questions := []string{
		"holidays in 13 2024",
		"holidays in 2024 13",
		"holidays in 0",
		"holidays in india",
		"is feb 31 2025 holiday",
		"is 31/02/2025 holiday",
	}

	for _, q := range questions {
		in, store := newTestInterpreter()

		got, err := in.Interpret(context.Background(), q)
		if err != nil {
			t.Fatalf("Interpret(%q) error = %v", q, err)
		}
		if got.Intent.Kind != KindParseFailure {
			t.Errorf("Interpret(%q) kind = %v, want %v", q, got.Intent.Kind, KindParseFailure)
		}
		if n := store.calls.Load(); n != 0 {
			t.Errorf("Interpret(%q) made %d store calls, want 0", q, n)
		}
	}
}

func TestInterpret_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("database is locked")
	in := New(brokenStore{err: storeErr}, zap.NewNop())

	questions := []string{
		"holidays in 2025",
		"holidays in jan 2025",
		"is jan 26 2025 holiday",
	}

	for _, q := range questions {
		got, err := in.InterpretAt(context.Background(), q, pinnedNow)
		if !errors.Is(err, storeErr) {
			t.Errorf("InterpretAt(%q) error = %v, want %v", q, err, storeErr)
		}
		if got.Text != "" {
			t.Errorf("InterpretAt(%q) Text = %q, want empty on error", q, got.Text)
		}
	}
}

func TestInterpretAt_DefaultYearFollowsClock(t *testing.T) {
	in, _ := newTestInterpreter()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	got, err := in.InterpretAt(context.Background(), "holidays in december", now)
	if err != nil {
		t.Fatal(err)
	}

	want := "Holidays in December 2024:\n- 25 December: Christmas"
	if got.Text != want {
		t.Errorf("InterpretAt() = %q, want %q", got.Text, want)
	}
}

func TestInterpret_Concurrent(t *testing.T) {
	in, _ := newTestInterpreter()
	questions := []string{
		"holidays in 2025",
		"holidays in jan 2025",
		"is jan 26 2025 holiday",
		"what is the leave policy",
		"holidays in 13 2024",
	}

	want := make([]Answer, len(questions))
	for i, q := range questions {
		a, err := in.Interpret(context.Background(), q)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = a
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, q := range questions {
				got, err := in.Interpret(context.Background(), q)
				if err != nil {
					t.Errorf("Interpret(%q) error = %v", q, err)
					return
				}
				if got != want[i] {
					t.Errorf("Interpret(%q) = %+v, want %+v", q, got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}
