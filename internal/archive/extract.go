package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// DefaultCandidatePaths lists the record payload locations tried in order:
// the canonical export path first, then legacy layouts.
var DefaultCandidatePaths = []string{
	"data/tweets.js",
	"tweets.js",
	"data/tweet.js",
	"tweet.js",
}

// ErrRecordSourceNotFound is returned when no candidate path exists in the archive.
var ErrRecordSourceNotFound = errors.New("record source not found in archive")

// ReadError reports a failure to open the container or read an entry.
type ReadError struct {
	Op   string
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Payload is the decompressed record file found in an archive.
type Payload struct {
	Path string
	Text string
}

// Extractor locates and decompresses the record payload of an export archive.
type Extractor struct {
	CandidatePaths []string
	// MaxEntrySize caps the decompressed payload in bytes; 0 means no limit.
	MaxEntrySize int64
}

// NewExtractor returns an Extractor probing paths, or DefaultCandidatePaths when empty.
func NewExtractor(paths []string) *Extractor {
	if len(paths) == 0 {
		paths = DefaultCandidatePaths
	}
	return &Extractor{CandidatePaths: paths}
}

// Extract opens data as a zip archive and returns the first candidate entry.
func (e *Extractor) Extract(ctx context.Context, data []byte) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}

	zr, err := openZip(data)
	if err != nil {
		return Payload{}, err
	}

	f := e.locate(zr)
	if f == nil {
		return Payload{}, ErrRecordSourceNotFound
	}

	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}

	text, err := e.readEntry(f)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Path: f.Name, Text: text}, nil
}

// ListEntries returns the names of all entries in the archive.
func ListEntries(data []byte) ([]string, error) {
	zr, err := openZip(data)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func openZip(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ReadError{Op: "open archive", Err: err}
	}
	return zr, nil
}

// locate returns the entry matching the highest-priority candidate path.
func (e *Extractor) locate(zr *zip.Reader) *zip.File {
	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.TrimPrefix(strings.ReplaceAll(f.Name, `\`, "/"), "./")
		if _, dup := byName[name]; !dup {
			byName[name] = f
		}
	}

	for _, p := range e.CandidatePaths {
		if f, ok := byName[p]; ok {
			return f
		}
	}
	return nil
}

func (e *Extractor) readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", &ReadError{Op: "open entry", Path: f.Name, Err: err}
	}
	defer rc.Close()

	var r io.Reader = rc
	if e.MaxEntrySize > 0 {
		r = io.LimitReader(rc, e.MaxEntrySize+1)
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", &ReadError{Op: "decompress entry", Path: f.Name, Err: err}
	}
	if e.MaxEntrySize > 0 && int64(len(b)) > e.MaxEntrySize {
		return "", &ReadError{
			Op:   "decompress entry",
			Path: f.Name,
			Err:  fmt.Errorf("entry exceeds %d bytes", e.MaxEntrySize),
		}
	}
	return string(b), nil
}
