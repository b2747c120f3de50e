package freesurfer

import (
	"encoding/binary"
	"math"
)

// EncodeSurface serializes m in the triangle surface layout. The comment is
// written followed by a blank line.
func EncodeSurface(m *SurfaceMesh) []byte {
	buf := make([]byte, 0, 3+len(m.Comment)+2+8+len(m.Vertices)*vertexSize+len(m.Triangles)*triangleSize)
	buf = append(buf, surfaceMagic...)
	buf = append(buf, m.Comment...)
	buf = append(buf, commentTerminator...)
	buf = appendInt32(buf, int32(len(m.Vertices)))
	buf = appendInt32(buf, int32(len(m.Triangles)))
	for _, v := range m.Vertices {
		for _, f := range v {
			buf = appendFloat32(buf, f)
		}
	}
	for _, t := range m.Triangles {
		for _, i := range t {
			buf = appendInt32(buf, i)
		}
	}
	return buf
}

// EncodeCurvature serializes c in the "new" curvature layout.
func EncodeCurvature(c *CurvatureField) []byte {
	vpv := c.ValuesPerVertex
	if vpv == 0 {
		vpv = 1
	}
	buf := make([]byte, 0, 15+4*len(c.Values))
	buf = append(buf, curvatureMagic...)
	buf = appendInt32(buf, int32(len(c.Values)))
	buf = appendInt32(buf, int32(c.NumFaces))
	buf = appendInt32(buf, int32(vpv))
	for _, v := range c.Values {
		buf = appendFloat32(buf, v)
	}
	return buf
}

// EncodeAnnotation serializes a in the .annot layout. A nil color table is
// written as a zero flag. origName is stored as the table's source filename.
func EncodeAnnotation(a *Annotation, origName string) []byte {
	buf := make([]byte, 0, 4+8*len(a.Labels)+64)
	buf = appendInt32(buf, int32(len(a.Labels)))
	for _, l := range a.Labels {
		buf = appendInt32(buf, l.Vertex)
		buf = appendInt32(buf, l.Label)
	}

	t := a.ColorTable
	if t == nil {
		return appendInt32(buf, 0)
	}
	buf = appendInt32(buf, 1)
	switch t.Layout {
	case LayoutVersion2:
		var maxIndex int32
		for _, e := range t.Entries {
			if e.Index > maxIndex {
				maxIndex = e.Index
			}
		}
		buf = appendInt32(buf, -2)
		buf = appendInt32(buf, maxIndex+1)
	default:
		buf = appendInt32(buf, int32(len(t.Entries)))
	}
	buf = appendInt32(buf, int32(len(origName)))
	buf = append(buf, origName...)
	buf = appendInt32(buf, int32(len(t.Entries)))
	for _, e := range t.Entries {
		buf = appendInt32(buf, e.Index)
		buf = appendInt32(buf, int32(len(e.Name)))
		buf = append(buf, e.Name...)
		buf = appendInt32(buf, e.R)
		buf = appendInt32(buf, e.G)
		buf = appendInt32(buf, e.B)
		buf = appendInt32(buf, e.A)
	}
	return buf
}

func appendInt32(b []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(v))
}

func appendFloat32(b []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(v))
}
