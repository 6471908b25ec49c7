package holiday

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/username/holiday-assistant/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadFile loads holidays from a seed file, picking the parser by extension:
// .txt (line format), .yaml/.yml, or .ics
func LoadFile(path string, logger *zap.Logger) ([]Holiday, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer file.Close()

	var holidays []Holiday
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", "":
		holidays, err = ParseText(file, logger)
	case ".yaml", ".yml":
		holidays, err = ParseYAML(file)
	case ".ics":
		holidays, err = ParseICS(file, logger)
	default:
		return nil, fmt.Errorf("unsupported holiday file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	logger.Info("Holiday file loaded",
		zap.String("file", path),
		zap.Int("holidays", len(holidays)))

	return holidays, nil
}

// ParseText parses the line-oriented seed format.
//
// Format: YYYY-MM-DD kind name
// Example: 2025-01-26 public Republic Day
//
// The description becomes "<Kind> holiday". Blank lines and lines starting
// with # are skipped; malformed lines are logged and skipped.
func ParseText(r io.Reader, logger *zap.Logger) ([]Holiday, error) {
	scanner := bufio.NewScanner(r)
	var holidays []Holiday

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 3 {
			logger.Warn("Invalid line format", zap.Int("line_no", lineNo), zap.String("line", line))
			continue
		}

		date, err := dateutil.ParseDate(parts[0])
		if err != nil {
			logger.Warn("Failed to parse date", zap.Int("line_no", lineNo), zap.String("date", parts[0]), zap.Error(err))
			continue
		}

		holidays = append(holidays, Holiday{
			Date:        date,
			Name:        strings.Join(parts[2:], " "),
			Description: describeKind(parts[1]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading holiday file: %w", err)
	}

	return holidays, nil
}

func describeKind(kind string) string {
	kind = strings.ToLower(kind)
	return strings.ToUpper(kind[:1]) + kind[1:] + " holiday"
}

type yamlHoliday struct {
	Date        string `yaml:"date"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type yamlCalendar struct {
	Holidays []yamlHoliday `yaml:"holidays"`
}

// ParseYAML parses a document of the form
//
//	holidays:
//	  - date: "2025-01-26"
//	    name: Republic Day
//	    description: Public holiday
func ParseYAML(r io.Reader) ([]Holiday, error) {
	var doc yamlCalendar
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}

	holidays := make([]Holiday, 0, len(doc.Holidays))
	for i, yh := range doc.Holidays {
		date, err := dateutil.ParseDate(yh.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday #%d: %w", i+1, err)
		}
		if strings.TrimSpace(yh.Name) == "" {
			return nil, fmt.Errorf("holiday #%d (%s): name is required", i+1, yh.Date)
		}
		holidays = append(holidays, Holiday{
			Date:        date,
			Name:        yh.Name,
			Description: yh.Description,
		})
	}

	return holidays, nil
}
