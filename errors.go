package confer

import (
	"errors"
	"fmt"
)

// Kind identifies the closed set of failure categories a Store or a
// module binding can produce.
type Kind int

const (
	// KindIO covers filesystem failures encountered while reading or
	// writing a configuration document.
	KindIO Kind = iota
	// KindParse covers TOML syntax errors encountered while decoding a
	// document into a Store.
	KindParse
	// KindSerialize covers failures encountered while encoding a Store
	// back into TOML text.
	KindSerialize
	// KindMissingKey reports a required (section, key) pair that is not
	// present in the store.
	KindMissingKey
	// KindTypeMismatch reports a (section, key) pair whose stored value
	// is not of the expected shape and has no applicable fallback.
	KindTypeMismatch
	// KindValueParse reports a value that was present and of a
	// plausible shape but failed a narrower conversion (range checks,
	// datetime parsing, array element validation).
	KindValueParse
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindSerialize:
		return "serialize"
	case KindMissingKey:
		return "missing_key"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindValueParse:
		return "value_parse"
	default:
		return "unknown"
	}
}

// ConferError is the single error type produced by this package. Its Kind
// field selects which of the payload fields below are meaningful, mirroring
// the closed error enum of the original conferencier store.
type ConferError struct {
	Kind Kind

	// Path is set for KindIO errors when a filesystem path is known.
	Path string
	// Section and Key identify the location of a MissingKey, TypeMismatch,
	// or ValueParse failure.
	Section string
	Key     string
	// Expected and Found describe a TypeMismatch failure in
	// human-readable terms (e.g. "string", "integer", "table").
	Expected string
	Found    string
	// Message carries the detail of a ValueParse failure.
	Message string

	// Cause is the underlying error for KindIO, KindParse, and
	// KindSerialize failures.
	Cause error
}

func (e *ConferError) Error() string {
	switch e.Kind {
	case KindIO:
		if e.Path != "" {
			return fmt.Sprintf("io error (path: %s): %v", e.Path, e.Cause)
		}
		return fmt.Sprintf("io error: %v", e.Cause)
	case KindParse:
		return fmt.Sprintf("failed to parse TOML: %v", e.Cause)
	case KindSerialize:
		return fmt.Sprintf("failed to serialize TOML: %v", e.Cause)
	case KindMissingKey:
		return fmt.Sprintf("missing key %s.%s", e.Section, e.Key)
	case KindTypeMismatch:
		return fmt.Sprintf("expected %s at %s.%s but found %s", e.Expected, e.Section, e.Key, e.Found)
	case KindValueParse:
		return fmt.Sprintf("invalid value at %s.%s: %s", e.Section, e.Key, e.Message)
	default:
		return "conferencier: unknown error"
	}
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As chains.
func (e *ConferError) Unwrap() error { return e.Cause }

// Is reports whether target is a *ConferError with the same Kind, allowing
// callers to write errors.Is(err, confer.ErrMissingKey) style checks against
// the sentinel kind values below.
func (e *ConferError) Is(target error) bool {
	var other *ConferError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Sentinel errors usable with errors.Is to test an error's Kind without
// constructing a full ConferError, mirroring the teacher's
// errors.Is(err, ErrConfigNotFound) idiom.
var (
	ErrIO           = &ConferError{Kind: KindIO}
	ErrParse        = &ConferError{Kind: KindParse}
	ErrSerialize    = &ConferError{Kind: KindSerialize}
	ErrMissingKey   = &ConferError{Kind: KindMissingKey}
	ErrTypeMismatch = &ConferError{Kind: KindTypeMismatch}
	ErrValueParse   = &ConferError{Kind: KindValueParse}
)

func newIOError(path string, cause error) *ConferError {
	return &ConferError{Kind: KindIO, Path: path, Cause: cause}
}

func newParseError(cause error) *ConferError {
	return &ConferError{Kind: KindParse, Cause: cause}
}

func newSerializeError(cause error) *ConferError {
	return &ConferError{Kind: KindSerialize, Cause: cause}
}

// MissingKey builds a KindMissingKey error for (section, key).
func MissingKey(section, key string) *ConferError {
	return &ConferError{Kind: KindMissingKey, Section: section, Key: key}
}

// TypeMismatch builds a KindTypeMismatch error describing what was expected
// versus what was actually stored at (section, key).
func TypeMismatch(section, key, expected, found string) *ConferError {
	return &ConferError{Kind: KindTypeMismatch, Section: section, Key: key, Expected: expected, Found: found}
}

// ValueParse builds a KindValueParse error with a human-readable message.
func ValueParse(section, key, message string) *ConferError {
	return &ConferError{Kind: KindValueParse, Section: section, Key: key, Message: message}
}

// withIndex annotates a ValueParse error's message with the array index at
// which the failure occurred, mirroring value_conversion::annotate_with_index.
// Errors of any other kind are returned unchanged.
func withIndex(err error, index int) error {
	var ce *ConferError
	if !errors.As(err, &ce) {
		return err
	}
	switch ce.Kind {
	case KindValueParse:
		return &ConferError{
			Kind:    KindValueParse,
			Section: ce.Section,
			Key:     ce.Key,
			Message: fmt.Sprintf("%s (at index %d)", ce.Message, index),
		}
	default:
		return ce
	}
}
