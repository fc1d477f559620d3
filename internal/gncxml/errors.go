package gncxml

import "fmt"

// ParseError is a fatal structural failure: malformed XML, an unparseable
// date, or a bad split amount. A forward-only parse cannot resynchronize
// mid-document, so the whole import is aborted and nothing is committed.
type ParseError struct {
	Offset  int64 // byte offset into the document
	Element string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("parse error at byte %d in <%s>: %v", e.Offset, e.Element, e.Err)
	}
	return fmt.Sprintf("parse error at byte %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
