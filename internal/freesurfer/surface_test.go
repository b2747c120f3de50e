package freesurfer

import (
	"errors"
	"testing"
)

func tetraSurface() []byte {
	w := &be{}
	w.raw(0xff, 0xff, 0xfe).str("\n\n").i32(4, 1)
	w.f32(0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1)
	w.i32(0, 1, 2)
	return w.bytes()
}

func TestDecodeSurfaceTetra(t *testing.T) {
	mesh, err := DecodeSurface(tetraSurface())
	if err != nil {
		t.Fatalf("DecodeSurface failed: %v", err)
	}

	want := []Vertex{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if len(mesh.Vertices) != len(want) {
		t.Fatalf("got %d vertices, want %d", len(mesh.Vertices), len(want))
	}
	for i, v := range want {
		if mesh.Vertices[i] != v {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Vertices[i], v)
		}
	}
	if len(mesh.Triangles) != 1 || mesh.Triangles[0] != (Triangle{0, 1, 2}) {
		t.Errorf("triangles = %v, want [[0 1 2]]", mesh.Triangles)
	}
	if mesh.Comment != "" {
		t.Errorf("Comment = %q, want empty", mesh.Comment)
	}
	if mesh.NumVertices != 4 || mesh.NumFaces != 1 {
		t.Errorf("counts = %d/%d, want 4/1", mesh.NumVertices, mesh.NumFaces)
	}
}

func TestDecodeSurfaceCounts(t *testing.T) {
	for _, n := range []int{0, 1, 3, 100} {
		m := &SurfaceMesh{Comment: "created by test on today"}
		for i := 0; i < n; i++ {
			m.Vertices = append(m.Vertices, Vertex{float32(i), float32(-i), 0.5})
		}
		for i := 0; i+2 < n; i++ {
			m.Triangles = append(m.Triangles, Triangle{int32(i), int32(i + 1), int32(i + 2)})
		}

		got, err := DecodeSurface(EncodeSurface(m))
		if err != nil {
			t.Fatalf("n=%d: DecodeSurface failed: %v", n, err)
		}
		if len(got.Vertices) != got.NumVertices || got.NumVertices != n {
			t.Errorf("n=%d: vertices=%d declared=%d", n, len(got.Vertices), got.NumVertices)
		}
		if len(got.Triangles) != got.NumFaces || got.NumFaces != len(m.Triangles) {
			t.Errorf("n=%d: triangles=%d declared=%d", n, len(got.Triangles), got.NumFaces)
		}
		if got.Comment != m.Comment {
			t.Errorf("n=%d: Comment = %q, want %q", n, got.Comment, m.Comment)
		}
	}
}

func TestDecodeSurfaceInvalidMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{0xff, 0xff}},
		{"curvature magic", append([]byte{0xff, 0xff, 0xff}, tetraSurface()[3:]...)},
		{"text", []byte("solid ascii\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := DecodeSurface(tt.data)
			if !errors.Is(err, ErrInvalidMagic) {
				t.Fatalf("expected ErrInvalidMagic, got %v", err)
			}
			if mesh != nil {
				t.Errorf("got a partial mesh on magic mismatch")
			}
		})
	}
}

func TestDecodeSurfaceTruncated(t *testing.T) {
	full := tetraSurface()

	_, err := DecodeSurface(full[:len(full)-1])
	if !errors.Is(err, ErrTruncatedData) {
		t.Fatalf("expected ErrTruncatedData, got %v", err)
	}
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *Error, got %T", err)
	}
	// magic(3) + terminator(2) + counts(8)
	if de.Offset != 13 || de.Need != 60 || de.Have != 59 {
		t.Errorf("diagnostics offset=%d need=%d have=%d, want 13/60/59", de.Offset, de.Need, de.Have)
	}
}

func TestDecodeSurfaceNegativeCount(t *testing.T) {
	data := (&be{}).raw(0xff, 0xff, 0xfe).str("\n\n").i32(-1, 0).bytes()
	if _, err := DecodeSurface(data); !errors.Is(err, ErrTruncatedData) {
		t.Fatalf("expected ErrTruncatedData, got %v", err)
	}
}

func TestDecodeSurfaceUnterminatedComment(t *testing.T) {
	data := (&be{}).raw(0xff, 0xff, 0xfe).str("created by nobody\n").bytes()
	_, err := DecodeSurface(data)
	if !errors.Is(err, ErrTruncatedData) {
		t.Fatalf("expected ErrTruncatedData for missing counts, got %v", err)
	}
}

func TestDecodeSurfaceKeepsOutOfRangeIndices(t *testing.T) {
	w := &be{}
	w.raw(0xff, 0xff, 0xfe).str("debug\n\n").i32(3, 2)
	w.f32(0, 0, 0, 1, 0, 0, 0, 1, 0)
	w.i32(0, 1, 2, 0, 2, 99)

	mesh, err := DecodeSurface(w.bytes())
	if err != nil {
		t.Fatalf("DecodeSurface failed: %v", err)
	}
	if mesh.Triangles[1] != (Triangle{0, 2, 99}) {
		t.Errorf("triangle 1 = %v, want [0 2 99]", mesh.Triangles[1])
	}
	if mesh.ValidTriangle(mesh.Triangles[1]) {
		t.Errorf("ValidTriangle accepted index 99")
	}
	if err := mesh.CheckTopology(); err == nil {
		t.Errorf("CheckTopology accepted index 99")
	}
}

func TestSurfaceBounds(t *testing.T) {
	mesh, err := DecodeSurface(tetraSurface())
	if err != nil {
		t.Fatalf("DecodeSurface failed: %v", err)
	}
	lo, hi := mesh.Bounds()
	if lo != (Vertex{0, 0, 0}) || hi != (Vertex{1, 1, 1}) {
		t.Errorf("Bounds = %v..%v, want [0 0 0]..[1 1 1]", lo, hi)
	}
}
