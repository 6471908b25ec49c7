package holiday

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"
)

//go:embed sample_holidays.txt
var sampleHolidays string

// Sample returns the built-in 2024/2025 holiday calendar
func Sample(logger *zap.Logger) []Holiday {
	holidays, err := ParseText(strings.NewReader(sampleHolidays), logger)
	if err != nil {
		// the embedded file is read from memory, scanning cannot fail
		panic(err)
	}
	return holidays
}
