package freesurfer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"fs-atlas-decoder/internal/binio"
)

// Sanity ceilings. Annotations have no magic number, so these bounds are
// the only corruption gate.
const (
	MaxAnnotationVertices = 10_000_000
	MaxFilenameLen        = 10_000
	MaxColorTableEntries  = 10_000
	MaxNameLen            = 1_000
)

// ColorTableError explains why color-table parsing stopped. Entry is -1 when
// the table header itself was unreadable.
type ColorTableError struct {
	Entry  int
	Offset int
	Err    error
}

func (e *ColorTableError) Error() string {
	if e.Entry < 0 {
		return fmt.Sprintf("freesurfer: color table header at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("freesurfer: color table entry %d at offset %d: %v", e.Entry, e.Offset, e.Err)
}

func (e *ColorTableError) Unwrap() error {
	return e.Err
}

// DecodeAnnotation decodes a vertex annotation file (lh.aparc.annot, ...).
//
// A missing or disabled color table is not an error. A color table that is
// malformed part-way is returned with the entries read so far; the problem is
// recorded in ColorTable.Err and Annotation.Warnings.
func DecodeAnnotation(data []byte) (*Annotation, error) {
	c := binio.NewCursor(data)

	nv, err := readHeaderInt(c, FormatAnnotation, "vertex count")
	if err != nil {
		return nil, err
	}
	if nv < 0 || nv > MaxAnnotationVertices {
		return nil, headerError(FormatAnnotation, 0, "vertex count %d outside [0,%d]", nv, MaxAnnotationVertices)
	}

	n := int(nv)
	ann := &Annotation{
		NumVertices: n,
		Labels:      make([]VertexLabel, 0, min(n, c.Remaining()/8)),
	}
	for i := 0; i < n; i++ {
		if c.Remaining() < 8 {
			e := truncatedError(FormatAnnotation, c.Offset(), (n-i)*8, c.Remaining(), "vertex labels")
			e.Vertex = i
			return nil, e
		}
		vtx, err := c.ReadInt32BE()
		if err != nil {
			return nil, cursorError(FormatAnnotation, err)
		}
		label, err := c.ReadInt32BE()
		if err != nil {
			return nil, cursorError(FormatAnnotation, err)
		}
		ann.Labels = append(ann.Labels, VertexLabel{Vertex: vtx, Label: label})
	}

	if c.AtEnd() {
		return ann, nil
	}

	ann.ColorTable, err = decodeColorTable(c)
	if err != nil {
		ann.Warnings = append(ann.Warnings, err)
	}
	return ann, nil
}

// decodeColorTable reads the optional trailing table. A non-nil table with a
// non-nil error is a partial result.
func decodeColorTable(c *binio.Cursor) (*ColorTable, error) {
	headerFail := func(err error) (*ColorTable, error) {
		return nil, &ColorTableError{Entry: -1, Offset: c.Offset(), Err: err}
	}

	flag, err := c.ReadInt32BE()
	if err != nil {
		return headerFail(err)
	}
	switch flag {
	case 0:
		return nil, nil
	case 1:
	default:
		// Only 1 announces a table; anything else is not parsed.
		return nil, &ColorTableError{Entry: -1, Offset: c.Offset() - 4, Err: fmt.Errorf("%w: color table flag %d", ErrInvalidHeader, flag)}
	}

	versionOrCount, err := c.ReadInt32BE()
	if err != nil {
		return headerFail(err)
	}
	t := &ColorTable{Layout: LayoutLegacy}
	if versionOrCount < 0 {
		t.Layout = LayoutVersion2
		// max structure index
		if _, err := c.ReadInt32BE(); err != nil {
			return headerFail(err)
		}
	}

	fnameLen, err := c.ReadInt32BE()
	if err != nil {
		return headerFail(err)
	}
	if fnameLen < 0 || fnameLen > MaxFilenameLen {
		return headerFail(fmt.Errorf("%w: filename length %d", ErrInvalidHeader, fnameLen))
	}
	if err := c.Skip(int(fnameLen)); err != nil {
		return headerFail(err)
	}

	count, err := c.ReadInt32BE()
	if err != nil {
		return headerFail(err)
	}
	if count < 0 || count > MaxColorTableEntries {
		return headerFail(fmt.Errorf("%w: entry count %d", ErrInvalidHeader, count))
	}

	t.Declared = int(count)
	t.Entries = make([]ColorTableEntry, 0, count)
	for i := 0; i < t.Declared; i++ {
		start := c.Offset()
		e, err := readColorTableEntry(c)
		if err != nil {
			t.Err = &ColorTableError{Entry: i, Offset: start, Err: err}
			return t, t.Err
		}
		t.Entries = append(t.Entries, e)
	}
	return t, nil
}

func readColorTableEntry(c *binio.Cursor) (ColorTableEntry, error) {
	var e ColorTableEntry

	idx, err := c.ReadInt32BE()
	if err != nil {
		return e, err
	}
	nameLen, err := c.ReadInt32BE()
	if err != nil {
		return e, err
	}
	if nameLen < 0 || nameLen > MaxNameLen {
		return e, fmt.Errorf("%w: name length %d", ErrInvalidHeader, nameLen)
	}
	raw, err := c.ReadBytes(int(nameLen))
	if err != nil {
		return e, err
	}

	var rgba [4]int32
	for k := range rgba {
		if rgba[k], err = c.ReadInt32BE(); err != nil {
			return e, err
		}
	}

	e = ColorTableEntry{
		Index: idx,
		Name:  decodeName(raw),
		R:     rgba[0],
		G:     rgba[1],
		B:     rgba[2],
		A:     rgba[3],
	}
	e.Code = e.Label()
	return e, nil
}

// decodeName drops NUL padding. Names that are not UTF-8 are read as
// Windows-1252, which covers the Latin-1 names some older atlases carry.
func decodeName(raw []byte) string {
	name := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b != 0 {
			name = append(name, b)
		}
	}
	if utf8.Valid(name) {
		return string(name)
	}
	if dec, err := charmap.Windows1252.NewDecoder().Bytes(name); err == nil {
		return string(dec)
	}
	return strings.ToValidUTF8(string(name), "�")
}
