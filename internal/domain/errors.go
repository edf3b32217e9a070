package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// InputFormatError is returned when the input archive is not a readable ZIP.
type InputFormatError struct {
	Path string
	Err  error
}

func (e *InputFormatError) Error() string {
	return fmt.Sprintf("file %q is not a proper ZIP: %v", e.Path, e.Err)
}

func (e *InputFormatError) Unwrap() error { return e.Err }

// ParseError reports a payload missing a required key or holding a malformed value.
type ParseError struct {
	Shape string // forecast|history|revgeocode
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: field %q: %v", e.Shape, e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s: field %q missing", e.Shape, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError wraps a failed call to an external service for one coordinate.
type FetchError struct {
	Service   string
	Op        string
	Coord     Coord
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s (%.6f, %.6f): %v", e.Service, e.Op, e.Coord.Lat, e.Coord.Lon, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a fetch failure worth retrying later.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient
	}
	var te interface{ Temporary() bool }
	if errors.As(err, &te) {
		return te.Temporary()
	}
	return false
}
