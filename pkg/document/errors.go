// Package document reads and writes costume, pattern and scenario JSON documents
package document

import "fmt"

// MalformedDocumentError reports JSON that does not parse or lacks required fields
type MalformedDocumentError struct {
	Kind   string // "costume", "pattern" or "scenario"
	Path   string // empty when decoding from memory
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	where := e.Kind
	if e.Path != "" {
		where = fmt.Sprintf("%s %s", e.Kind, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed %s: %s: %v", where, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s: %s", where, e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// IoError reports a failed read or write together with the failing path
type IoError struct {
	Op   string // "read", "write" or "list"
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

func malformed(kind, reason string, err error) *MalformedDocumentError {
	return &MalformedDocumentError{Kind: kind, Reason: reason, Err: err}
}

// withPath fills in the path of a MalformedDocumentError produced while decoding
func withPath(err error, path string) error {
	if m, ok := err.(*MalformedDocumentError); ok && m.Path == "" {
		m.Path = path
	}
	return err
}
