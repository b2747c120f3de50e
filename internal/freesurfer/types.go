package freesurfer

import "fmt"

// Vertex is a surface position in millimetres (x, y, z).
type Vertex [3]float32

// Triangle holds three indices into the vertex list. Winding is kept as stored.
type Triangle [3]int32

// SurfaceMesh holds a decoded triangle surface (lh.white, rh.inflated, ...).
type SurfaceMesh struct {
	Comment     string // header text, usually "created by <user> on <date>"
	NumVertices int
	NumFaces    int
	Vertices    []Vertex
	Triangles   []Triangle
}

// ValidTriangle reports whether every index of t addresses a vertex of m.
func (m *SurfaceMesh) ValidTriangle(t Triangle) bool {
	n := int32(len(m.Vertices))
	return t[0] >= 0 && t[0] < n && t[1] >= 0 && t[1] < n && t[2] >= 0 && t[2] < n
}

// CheckTopology returns an error naming the first triangle that references
// a vertex outside the mesh. Decoding never performs this check.
func (m *SurfaceMesh) CheckTopology() error {
	for i, t := range m.Triangles {
		if !m.ValidTriangle(t) {
			return fmt.Errorf("freesurfer: triangle %d %v references a vertex outside [0,%d)", i, t, len(m.Vertices))
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *SurfaceMesh) Bounds() (lo, hi Vertex) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < lo[k] {
				lo[k] = v[k]
			}
			if v[k] > hi[k] {
				hi[k] = v[k]
			}
		}
	}
	return lo, hi
}

// CurvatureField holds one scalar per vertex from a "new" curvature file.
type CurvatureField struct {
	NumVertices     int
	NumFaces        int // carried by the header, not used
	ValuesPerVertex int // 1 for curvature; other values are left to the caller
	Values          []float32
}

// Range returns the smallest and largest value.
func (c *CurvatureField) Range() (lo, hi float32) {
	if len(c.Values) == 0 {
		return 0, 0
	}
	lo, hi = c.Values[0], c.Values[0]
	for _, v := range c.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// VertexLabel pairs a vertex index with the label code assigned to it.
type VertexLabel struct {
	Vertex int32
	Label  int32
}

// ColorTableLayout identifies which header variant a color table used.
type ColorTableLayout int

const (
	// LayoutLegacy tables store the entry count directly after the flag.
	LayoutLegacy ColorTableLayout = iota
	// LayoutVersion2 tables store a negated version and a max structure index first.
	LayoutVersion2
)

func (l ColorTableLayout) String() string {
	switch l {
	case LayoutLegacy:
		return "legacy"
	case LayoutVersion2:
		return "v2"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// ColorTableEntry is one named structure of an embedded color table.
// Channel values are kept exactly as read.
type ColorTableEntry struct {
	Index int32
	Name  string
	R     int32
	G     int32
	B     int32
	A     int32
	Code  int32 // R + G*256 + B*65536
}

// LabelCode derives the per-vertex label code from an RGB triple.
func LabelCode(r, g, b int32) int32 {
	return r + g*256 + b*65536
}

// Label recomputes the label code from the stored channels.
func (e ColorTableEntry) Label() int32 {
	return LabelCode(e.R, e.G, e.B)
}

// ColorTable is a possibly partial color table. When Err is non-nil parsing
// stopped early and Entries holds everything read before the failure.
type ColorTable struct {
	Layout   ColorTableLayout
	Declared int // entry count announced by the table header
	Entries  []ColorTableEntry
	Err      error
}

// Dropped returns how many announced entries were not decoded.
func (t *ColorTable) Dropped() int {
	if d := t.Declared - len(t.Entries); d > 0 {
		return d
	}
	return 0
}

// Lookup returns the first entry whose code equals label.
func (t *ColorTable) Lookup(label int32) (ColorTableEntry, bool) {
	for _, e := range t.Entries {
		if e.Code == label {
			return e, true
		}
	}
	return ColorTableEntry{}, false
}

// Annotation is a decoded .annot file.
type Annotation struct {
	NumVertices int
	Labels      []VertexLabel
	ColorTable  *ColorTable // nil when the file carries no table
	Warnings    []error     // recovered color-table problems
}
