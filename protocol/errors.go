package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOutput means records were found but no document could be produced.
	ErrNoOutput = errors.New("no documents generated")
	// ErrUnknownProgram means a program code has no configured template.
	ErrUnknownProgram = errors.New("unknown program")
	// ErrUnknownTheme means an overflow code has no configured theme.
	ErrUnknownTheme = errors.New("unknown theme")
	// ErrTableIndex means a template lacks the configured table or row.
	ErrTableIndex = errors.New("template table not found")
)

// Kind is the kind of generated document.
type Kind string

const (
	KindProtocol   Kind = "protocol"
	KindAttendance Kind = "attendance"
	KindConsent    Kind = "consent"
)

// BucketError is a failure confined to one document of a batch.
type BucketError struct {
	Program string // empty for batch-wide documents
	Kind    Kind
	Err     error
}

func (e *BucketError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s for program %s: %v", e.Kind, e.Program, e.Err)
}

func (e *BucketError) Unwrap() error { return e.Err }
