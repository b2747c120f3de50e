package freesurfer

import (
	"errors"
	"fmt"
	"strings"

	"fs-atlas-decoder/internal/binio"
)

// Error kinds. Every decode failure matches exactly one of them with errors.Is.
var (
	ErrInvalidMagic  = errors.New("freesurfer: invalid magic")
	ErrInvalidHeader = errors.New("freesurfer: invalid header")
	ErrTruncatedData = errors.New("freesurfer: truncated data")
	ErrOutOfBounds   = binio.ErrOutOfBounds
)

// Error carries the diagnostics of a failed decode.
type Error struct {
	Kind   error  // ErrInvalidMagic, ErrInvalidHeader, ErrTruncatedData or ErrOutOfBounds
	Format Format // file format being decoded
	Offset int    // buffer offset where the problem was detected
	Need   int    // bytes required from Offset, when known
	Have   int    // bytes available from Offset, when known
	Vertex int    // vertex reached when the data ran out, -1 when not applicable
	Msg    string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	fmt.Fprintf(&b, " (%s, offset %d)", e.Format, e.Offset)
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Need > 0 {
		fmt.Fprintf(&b, ": need %d bytes, have %d", e.Need, e.Have)
	}
	if e.Vertex >= 0 {
		fmt.Fprintf(&b, " at vertex %d", e.Vertex)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func magicError(f Format, want, got []byte) *Error {
	return &Error{
		Kind:   ErrInvalidMagic,
		Format: f,
		Vertex: -1,
		Msg:    fmt.Sprintf("expected % X, got % X", want, got),
	}
}

func headerError(f Format, off int, format string, args ...any) *Error {
	return &Error{
		Kind:   ErrInvalidHeader,
		Format: f,
		Offset: off,
		Vertex: -1,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func truncatedError(f Format, off, need, have int, msg string) *Error {
	return &Error{
		Kind:   ErrTruncatedData,
		Format: f,
		Offset: off,
		Need:   need,
		Have:   have,
		Vertex: -1,
		Msg:    msg,
	}
}

// cursorError converts a cursor overrun that a pre-flight check should have
// ruled out. It surfaces as ErrOutOfBounds.
func cursorError(f Format, err error) *Error {
	e := &Error{Kind: ErrOutOfBounds, Format: f, Vertex: -1, Msg: err.Error()}
	var oob *binio.OutOfBoundsError
	if errors.As(err, &oob) {
		e.Offset, e.Need, e.Have = oob.Offset, oob.Need, oob.Have
		e.Msg = ""
	}
	return e
}
