package freesurfer

import (
	"bytes"
	"math"

	"fs-atlas-decoder/internal/binio"
)

const (
	vertexSize   = 12 // 3 x float32
	triangleSize = 12 // 3 x int32
)

var commentTerminator = []byte{'\n', '\n'}

// DecodeSurface decodes a triangle surface file (magic FF FF FE).
//
// The header comment ends at the first blank line; a missing terminator
// truncates the comment instead of failing. Triangle indices are returned
// as stored, see SurfaceMesh.CheckTopology.
func DecodeSurface(data []byte) (*SurfaceMesh, error) {
	c := binio.NewCursor(data)
	if err := expectMagic(c, FormatSurface, surfaceMagic); err != nil {
		return nil, err
	}

	comment, _ := c.ReadUntil(commentTerminator)
	mesh := &SurfaceMesh{Comment: string(comment)}

	nv, err := readHeaderInt(c, FormatSurface, "vertex count")
	if err != nil {
		return nil, err
	}
	nf, err := readHeaderInt(c, FormatSurface, "face count")
	if err != nil {
		return nil, err
	}
	if nv < 0 || nf < 0 {
		return nil, truncatedError(FormatSurface, c.Offset(), 0, c.Remaining(),
			"negative vertex or face count")
	}

	need := int64(nv)*vertexSize + int64(nf)*triangleSize
	if need > int64(c.Remaining()) {
		return nil, truncatedError(FormatSurface, c.Offset(), clampInt(need), c.Remaining(),
			"vertex and face data")
	}

	mesh.NumVertices = int(nv)
	mesh.NumFaces = int(nf)
	mesh.Vertices = make([]Vertex, nv)
	for i := range mesh.Vertices {
		for k := 0; k < 3; k++ {
			v, err := c.ReadFloat32BE()
			if err != nil {
				return nil, cursorError(FormatSurface, err)
			}
			mesh.Vertices[i][k] = v
		}
	}

	mesh.Triangles = make([]Triangle, nf)
	for i := range mesh.Triangles {
		for k := 0; k < 3; k++ {
			idx, err := c.ReadInt32BE()
			if err != nil {
				return nil, cursorError(FormatSurface, err)
			}
			mesh.Triangles[i][k] = idx
		}
	}

	return mesh, nil
}

func expectMagic(c *binio.Cursor, f Format, want []byte) error {
	got, ok := c.Peek(len(want))
	if !ok || !bytes.Equal(got, want) {
		return magicError(f, want, got)
	}
	return c.Skip(len(want))
}

func readHeaderInt(c *binio.Cursor, f Format, field string) (int32, error) {
	v, err := c.ReadInt32BE()
	if err != nil {
		return 0, truncatedError(f, c.Offset(), 4, c.Remaining(), field)
	}
	return v, nil
}

func clampInt(n int64) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}
