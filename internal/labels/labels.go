// Package labels turns decoded annotations into named cortical regions.
package labels

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"fs-atlas-decoder/internal/freesurfer"
)

// Hemisphere tags a cortical half.
type Hemisphere string

const (
	Left  Hemisphere = "lh"
	Right Hemisphere = "rh"
)

// Hemispheres lists both halves in load order.
var Hemispheres = []Hemisphere{Left, Right}

// ParseHemisphere accepts "lh"/"rh" and the spelled-out forms.
func ParseHemisphere(s string) (Hemisphere, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lh", "left":
		return Left, nil
	case "rh", "right":
		return Right, nil
	}
	return "", fmt.Errorf("labels: unknown hemisphere %q", s)
}

// Region is a named set of vertices sharing one label code.
type Region struct {
	Name       string // "<entry name>-<hemisphere>"
	Hemisphere Hemisphere
	Vertices   []int32
	Color      color.NRGBA // display colour, always opaque
	Label      int32
	Entry      freesurfer.ColorTableEntry
}

// Regions maps a hemisphere-qualified region name to its region.
type Regions map[string]*Region

// excluded names are parcellation bookkeeping rather than anatomy.
var excluded = map[string]bool{
	"unknown":        true,
	"corpuscallosum": true,
	"medial_wall":    true,
	"medial wall":    true,
}

// Excluded reports whether a color-table name is skipped by Assemble.
func Excluded(name string) bool {
	return excluded[strings.ToLower(strings.TrimSpace(name))]
}

// Assemble groups the vertices of ann by color-table entry. Entries that are
// excluded or match no vertex produce no region. An annotation without a
// color table yields an empty map.
//
// Each entry scans every vertex label; atlases carry a few hundred entries
// and this runs once per file load.
func Assemble(ann *freesurfer.Annotation, hemi Hemisphere) Regions {
	out := make(Regions)
	if ann == nil || ann.ColorTable == nil {
		return out
	}

	type nameCode struct {
		name string
		code int32
	}
	seen := make(map[nameCode]bool)

	for _, entry := range ann.ColorTable.Entries {
		if Excluded(entry.Name) {
			continue
		}
		// A repeated (name, code) pair would select the same vertices again.
		key := nameCode{entry.Name, entry.Code}
		if seen[key] {
			continue
		}
		seen[key] = true

		var verts []int32
		for _, vl := range ann.Labels {
			if vl.Label == entry.Code {
				verts = append(verts, vl.Vertex)
			}
		}
		if len(verts) == 0 {
			continue
		}

		name := entry.Name + "-" + string(hemi)
		if prev, ok := out[name]; ok {
			// Duplicate names with distinct codes collapse into one region.
			prev.Vertices = append(prev.Vertices, verts...)
			continue
		}
		out[name] = &Region{
			Name:       name,
			Hemisphere: hemi,
			Vertices:   verts,
			Color:      displayColor(entry),
			Label:      entry.Code,
			Entry:      entry,
		}
	}
	return out
}

// Merge combines region maps key-wise into a new map.
func Merge(maps ...Regions) Regions {
	n := 0
	for _, m := range maps {
		n += len(m)
	}
	out := make(Regions, n)
	for _, m := range maps {
		for k, r := range m {
			out[k] = r
		}
	}
	return out
}

// Names returns the region names in sorted order.
func (rs Regions) Names() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForHemisphere returns the regions belonging to hemi.
func (rs Regions) ForHemisphere(hemi Hemisphere) Regions {
	out := make(Regions)
	for k, r := range rs {
		if r.Hemisphere == hemi {
			out[k] = r
		}
	}
	return out
}

// VertexColors returns a per-vertex colour table of length n for one
// hemisphere. ok[i] is false where no region covers vertex i. Vertices are
// painted in name order so overlapping regions resolve deterministically.
func (rs Regions) VertexColors(hemi Hemisphere, n int) (colors []color.NRGBA, ok []bool) {
	colors = make([]color.NRGBA, n)
	ok = make([]bool, n)
	for _, name := range rs.Names() {
		r := rs[name]
		if r.Hemisphere != hemi {
			continue
		}
		for _, v := range r.Vertices {
			if v >= 0 && int(v) < n {
				colors[v] = r.Color
				ok[v] = true
			}
		}
	}
	return colors, ok
}

// Hex formats c as #rrggbb.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func displayColor(e freesurfer.ColorTableEntry) color.NRGBA {
	return color.NRGBA{R: clamp8(e.R), G: clamp8(e.G), B: clamp8(e.B), A: 255}
}

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
