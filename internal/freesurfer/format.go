package freesurfer

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Format selects a decode path.
type Format int

const (
	FormatUnknown Format = iota
	FormatSurface
	FormatCurvature
	FormatAnnotation
)

var (
	surfaceMagic   = []byte{0xff, 0xff, 0xfe}
	curvatureMagic = []byte{0xff, 0xff, 0xff}
)

func (f Format) String() string {
	switch f {
	case FormatSurface:
		return "surface"
	case FormatCurvature:
		return "curvature"
	case FormatAnnotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// Detect chooses a format by peeking at the first bytes of data. Annotations
// have no magic, so anything that starts with a plausible vertex count and
// is long enough to hold the labels is reported as FormatAnnotation.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, surfaceMagic):
		return FormatSurface
	case bytes.HasPrefix(data, curvatureMagic):
		return FormatCurvature
	}
	if len(data) < 4 {
		return FormatUnknown
	}
	n := int64(int32(binary.BigEndian.Uint32(data)))
	if n < 0 || n > MaxAnnotationVertices || 4+8*n > int64(len(data)) {
		return FormatUnknown
	}
	return FormatAnnotation
}

// File is the result of Decode. Exactly one of the pointers is set.
type File struct {
	Format     Format
	Surface    *SurfaceMesh
	Curvature  *CurvatureField
	Annotation *Annotation
}

// Decode detects the format of data and runs the matching decoder.
func Decode(data []byte) (*File, error) {
	f := Detect(data)
	switch f {
	case FormatSurface:
		m, err := DecodeSurface(data)
		if err != nil {
			return nil, err
		}
		return &File{Format: f, Surface: m}, nil
	case FormatCurvature:
		c, err := DecodeCurvature(data)
		if err != nil {
			return nil, err
		}
		return &File{Format: f, Curvature: c}, nil
	case FormatAnnotation:
		a, err := DecodeAnnotation(data)
		if err != nil {
			return nil, err
		}
		return &File{Format: f, Annotation: a}, nil
	}
	return nil, &Error{
		Kind:   ErrInvalidMagic,
		Format: FormatUnknown,
		Vertex: -1,
		Msg:    fmt.Sprintf("unrecognized signature % X", leading(data, 4)),
	}
}

func leading(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}

