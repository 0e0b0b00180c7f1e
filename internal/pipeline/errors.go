package pipeline

import (
	"context"
	"errors"

	"github.com/suykerbuyk/x-heatmap/internal/archive"
	"github.com/suykerbuyk/x-heatmap/internal/tweets"
)

// ErrNoRecordsFound is returned when the payload decodes to an empty array.
var ErrNoRecordsFound = errors.New("no records found in archive")

// Kind classifies a pipeline failure.
type Kind int

const (
	KindNone Kind = iota
	RecordSourceNotFound
	ArchiveReadError
	MalformedPayload
	NoRecordsFound
	Cancelled
)

var kindNames = map[Kind]string{
	KindNone:             "success",
	RecordSourceNotFound: "record_source_not_found",
	ArchiveReadError:     "archive_read_error",
	MalformedPayload:     "malformed_payload",
	NoRecordsFound:       "no_records_found",
	Cancelled:            "cancelled",
}

// String returns the snake_case name used for metric labels and logs.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Classify maps an error returned by Process to its Kind. Errors that match
// no specific kind are treated as archive read failures.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	case errors.Is(err, archive.ErrRecordSourceNotFound):
		return RecordSourceNotFound
	case errors.Is(err, tweets.ErrMalformedPayload):
		return MalformedPayload
	case errors.Is(err, ErrNoRecordsFound):
		return NoRecordsFound
	default:
		return ArchiveReadError
	}
}

// Message returns the user-facing text for a failure of kind k.
func Message(k Kind, err error) string {
	switch k {
	case KindNone:
		return ""
	case RecordSourceNotFound:
		return "tweets.js file not found in the archive. Please ensure you uploaded a valid Twitter archive."
	case NoRecordsFound:
		return "No tweets found in the archive."
	case MalformedPayload:
		return "Failed to parse tweets.js file. The file format may be invalid."
	case Cancelled:
		return "Processing was cancelled."
	}

	cause := "Unknown error"
	var re *archive.ReadError
	switch {
	case errors.As(err, &re) && re.Err != nil:
		cause = re.Err.Error()
	case err != nil:
		cause = err.Error()
	}
	return "Failed to parse archive: " + cause
}
