package ics

import (
	"context"
	"errors"
	"fmt"
	"os"

	appLog "slotcal/internal/log"
)

// Source represents a single ICS file.
type Source struct {
	// ID is an internal identifier (e.g., config calendar ID).
	ID string
	// Name is a human-friendly label.
	Name string
	// Path is the location of the .ics file.
	Path string
}

// LoadResult contains the outcome of loading a single ICS source.
type LoadResult struct {
	Source Source
	Body   []byte
}

// Loader reads ICS payloads from disk.
type Loader struct {
	// MaxBytes caps the size of a single file. Zero means no limit.
	MaxBytes int64
}

func NewLoader() *Loader {
	return &Loader{MaxBytes: 16 << 20}
}

// LoadAll loads all given sources and returns individual results.
// Errors for individual sources are logged and returned in the error slice;
// the result slice only contains sources that produced a body.
func (l *Loader) LoadAll(ctx context.Context, sources []Source) ([]LoadResult, []error) {
	results := make([]LoadResult, 0, len(sources))
	errs := make([]error, 0)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := l.LoadOne(src)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("ics load failed", err, "id", src.ID, "path", src.Path)
			continue
		}
		results = append(results, res)
	}

	return results, errs
}

// LoadOne reads a single ICS source.
func (l *Loader) LoadOne(src Source) (LoadResult, error) {
	if src.Path == "" {
		return LoadResult{}, fmt.Errorf("source %q: path is empty", src.ID)
	}

	info, err := os.Stat(src.Path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("source %q: %w", src.ID, err)
	}
	if info.IsDir() {
		return LoadResult{}, fmt.Errorf("source %q: %s is a directory", src.ID, src.Path)
	}
	if l.MaxBytes > 0 && info.Size() > l.MaxBytes {
		return LoadResult{}, fmt.Errorf("source %q: %w (%d bytes)", src.ID, ErrTooLarge, info.Size())
	}

	body, err := os.ReadFile(src.Path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("source %q: %w", src.ID, err)
	}

	appLog.Debug("ics load success", "id", src.ID, "path", src.Path, "bytes", len(body))
	return LoadResult{Source: src, Body: body}, nil
}

// ErrTooLarge is returned for files above Loader.MaxBytes.
var ErrTooLarge = errors.New("ics file too large")
