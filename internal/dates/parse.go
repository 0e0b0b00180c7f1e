package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"
)

// ArchiveLayout is the created_at format written by the export,
// e.g. "Wed Oct 05 20:18:36 +0000 2011".
const ArchiveLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Strategy attempts to parse raw, reporting whether it produced a valid time.
type Strategy func(raw string, loc *time.Location) (time.Time, bool)

// Strategies is the ordered parse chain used by ParseTimestamp.
var Strategies = []Strategy{
	ParseGeneric,
	ParseArchiveLayout,
	ParseLenient,
}

// ParseGeneric handles ISO 8601 and the common locale layouts dateparse knows.
// Partial inputs such as "Wed Oct 05" parse without a year; those are
// rejected rather than bucketed into year 0.
func ParseGeneric(raw string, loc *time.Location) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(raw, loc)
	if err != nil || t.IsZero() || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}

// ParseArchiveLayout parses the export's fixed created_at layout.
func ParseArchiveLayout(raw string, _ *time.Location) (time.Time, bool) {
	t, err := time.Parse(ArchiveLayout, strings.TrimSpace(raw))
	if err != nil || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}

// ParseLenient collapses whitespace and strips quotes before a last generic attempt.
func ParseLenient(raw string, loc *time.Location) (time.Time, bool) {
	cleaned := strings.Join(strings.Fields(strings.Trim(raw, "\"' \t\r\n")), " ")
	if cleaned == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(ArchiveLayout, cleaned); err == nil && t.Year() != 0 {
		return t, true
	}
	return ParseGeneric(cleaned, loc)
}

// ParseTimestamp runs the strategy chain and returns the first valid result
// converted to loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, try := range Strategies {
		if t, ok := try(raw, loc); ok {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// Parser wraps ParseTimestamp with the "now" fallback. A Parser is cheap and
// meant to be built per pipeline run.
type Parser struct {
	Location   *time.Location
	Logger     zerolog.Logger
	Now        func() time.Time
	OnFallback func(raw string)
}

// NewParser returns a Parser for loc that logs fallbacks to logger.
func NewParser(loc *time.Location, logger zerolog.Logger) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{Location: loc, Logger: logger, Now: time.Now}
}

// Parse never fails: unparseable input yields the current time and a warning.
func (p *Parser) Parse(raw string) time.Time {
	if t, ok := ParseTimestamp(raw, p.Location); ok {
		return t
	}

	p.Logger.Warn().Str("raw", raw).Msg("unparseable timestamp, using current time")
	if p.OnFallback != nil {
		p.OnFallback(raw)
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().In(p.Location)
}
