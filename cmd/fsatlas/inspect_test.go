package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fs-atlas-decoder/internal/atlas/atlastest"
	"fs-atlas-decoder/internal/freesurfer"
	"fs-atlas-decoder/internal/labels"
	"fs-atlas-decoder/internal/logging"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{
			name: "surface",
			data: freesurfer.EncodeSurface(atlastest.Mesh(labels.Left)),
			want: []string{"surface, 4 vertices, 4 faces", `"created by atlastest"`},
		},
		{
			name: "curvature",
			data: freesurfer.EncodeCurvature(atlastest.Curvature()),
			want: []string{"curvature, 4 vertices, 1 values/vertex, range [-0.500, 0.500]"},
		},
		{
			name: "annotation",
			data: freesurfer.EncodeAnnotation(atlastest.Annotation(), "ct.txt"),
			want: []string{"annotation, 4 vertices", "legacy color table 3/3 entries", "2 regions"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := freesurfer.Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			got := summarize(f)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("summarize = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestWriteDumpTruncates(t *testing.T) {
	f, err := freesurfer.Decode(freesurfer.EncodeSurface(atlastest.Mesh(labels.Right)))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	writeDump(&buf, f, 1)
	out := buf.String()
	if !strings.Contains(out, "NumVertices: (int) 4") {
		t.Errorf("dump missing header fields:\n%s", out)
	}
	if strings.Count(out, "(freesurfer.Vertex)") != 1 {
		t.Errorf("dump kept more than one vertex:\n%s", out)
	}
	if len(f.Surface.Vertices) != 4 {
		t.Error("writeDump modified the decoded mesh")
	}
}

func TestInspectCommand(t *testing.T) {
	logging.ConfigureTests()
	dir := t.TempDir()
	good := filepath.Join(dir, "lh.curv")
	bad := filepath.Join(dir, "lh.broken")
	if err := os.WriteFile(good, freesurfer.EncodeCurvature(atlastest.Curvature()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte{0xFF, 0xFF, 0xFE, 'x'}, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"inspect", "--log-level", "error", good, bad})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Errorf("Execute err = %v", err)
	}
	if !strings.Contains(out.String(), "lh.curv: curvature, 4 vertices") {
		t.Errorf("output = %q", out.String())
	}
}
