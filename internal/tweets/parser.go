package tweets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	// CanonicalPrefix is the assignment wrapping the records in current exports.
	CanonicalPrefix = "window.YTD.tweets.part0 = "
	// LegacyPrefix is the singular form used by older exports.
	LegacyPrefix = "window.YTD.tweet.part0 = "
)

// DefaultPrefixes is the ordered list of wrapper prefixes tried by Parse.
var DefaultPrefixes = []string{CanonicalPrefix, LegacyPrefix}

// ErrMalformedPayload matches any payload decoding failure via errors.Is.
var ErrMalformedPayload = errors.New("malformed record payload")

// MalformedPayloadError carries the decoder's error for a payload that is not
// a JSON array of records after unwrapping.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("decode records: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

// Parser strips the JavaScript assignment wrapper and decodes the records.
type Parser struct {
	Prefixes []string
	Logger   zerolog.Logger

	// OnIgnored, when set, receives the number of zeroed fields per record
	// that had any.
	OnIgnored func(n int)
}

// NewParser returns a Parser for prefixes, or DefaultPrefixes when empty.
func NewParser(prefixes []string) *Parser {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	return &Parser{Prefixes: prefixes, Logger: zerolog.Nop()}
}

// Parse decodes the payload text. An empty array yields an empty, non-nil
// slice and no error.
func (p *Parser) Parse(text string) ([]Record, error) {
	body := Unwrap(text, p.Prefixes)

	var records []Record
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}
	if records == nil {
		records = []Record{}
	}

	for _, r := range records {
		fields := r.Tweet.IgnoredFields()
		if len(fields) == 0 {
			continue
		}
		p.Logger.Debug().Str("id", r.ID()).Strs("fields", fields).Msg("ignored unreadable fields")
		if p.OnIgnored != nil {
			p.OnIgnored(len(fields))
		}
	}
	return records, nil
}

// ParseFile reads an unpacked payload file from disk and parses it.
func (p *Parser) ParseFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return p.Parse(string(data))
}

// Unwrap removes a leading BOM and the first prefix found in text, then
// trims whitespace and a single trailing semicolon.
func Unwrap(text string, prefixes []string) string {
	body := strings.TrimPrefix(text, "\ufeff")
	if prefix := MatchedPrefix(body, prefixes); prefix != "" {
		body = strings.Replace(body, prefix, "", 1)
	}
	body = strings.TrimSpace(body)
	return strings.TrimSuffix(body, ";")
}

// MatchedPrefix returns the first prefix contained in text, or "".
func MatchedPrefix(text string, prefixes []string) string {
	for _, prefix := range prefixes {
		if prefix != "" && strings.Contains(text, prefix) {
			return prefix
		}
	}
	return ""
}
