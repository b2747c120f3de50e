package freesurfer

import (
	"errors"
	"testing"
)

func TestDetect(t *testing.T) {
	annot := &be{}
	writeLabels(annot, 1, 2)

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"surface", tetraSurface(), FormatSurface},
		{"curvature", curvatureBuffer(1, 0.5), FormatCurvature},
		{"annotation", annot.bytes(), FormatAnnotation},
		{"too short", []byte{0, 0}, FormatUnknown},
		{"count past end", (&be{}).i32(100).bytes(), FormatUnknown},
		{"negative count", (&be{}).i32(-0x7F000000).bytes(), FormatUnknown},
		{"curvature magic prefix", (&be{}).raw(0xff, 0xff, 0xff, 0xf9).bytes(), FormatCurvature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeDispatch(t *testing.T) {
	f, err := Decode(tetraSurface())
	if err != nil {
		t.Fatalf("Decode surface: %v", err)
	}
	if f.Format != FormatSurface || f.Surface == nil || f.Curvature != nil || f.Annotation != nil {
		t.Errorf("surface file = %+v", f)
	}

	f, err = Decode(curvatureBuffer(1, 0.5))
	if err != nil {
		t.Fatalf("Decode curvature: %v", err)
	}
	if f.Format != FormatCurvature || f.Curvature == nil {
		t.Errorf("curvature file = %+v", f)
	}

	if _, err := Decode([]byte{1, 2}); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("unknown data: expected ErrInvalidMagic, got %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	_, err := DecodeSurface([]byte{0xff, 0xff, 0xfd})
	want := "freesurfer: invalid magic (surface, offset 0): expected FF FF FE, got FF FF FD"
	if err == nil || err.Error() != want {
		t.Errorf("Error() = %q, want %q", err, want)
	}
}
