package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal pipeline failure.
type Kind string

const (
	KindFormat      Kind = "format"
	KindStructure   Kind = "structure"
	KindGeneration  Kind = "generation"
	KindCompression Kind = "compression"
	KindManifest    Kind = "manifest"
	KindPackage     Kind = "package"
	KindUsage       Kind = "usage"
	KindInternal    Kind = "internal"
)

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Format reports an archive that could not be read as compressed or plain tar.
func Format(op, format string, args ...any) error {
	return newf(KindFormat, op, format, args...)
}

// Structure reports an expected directory or file that is missing from a bundle.
func Structure(op, format string, args ...any) error {
	return newf(KindStructure, op, format, args...)
}

// Generation reports a failed, timed out or incomplete generator run.
func Generation(op, format string, args ...any) error {
	return newf(KindGeneration, op, format, args...)
}

// Compression reports a compressor failure for a single file.
func Compression(op, format string, args ...any) error {
	return newf(KindCompression, op, format, args...)
}

// Manifest reports manifest JSON that could not be read, parsed or written.
func Manifest(op, format string, args ...any) error {
	return newf(KindManifest, op, format, args...)
}

// Package reports a failure to write the output archive to its backend.
func Package(op, format string, args ...any) error {
	return newf(KindPackage, op, format, args...)
}

// Usage reports invalid command-line input caught before any work starts.
func Usage(format string, args ...any) error {
	return &Error{Kind: KindUsage, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
