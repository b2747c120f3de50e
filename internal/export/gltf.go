package export

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/labels"
)

// GLBFileName returns "brain_<geometry>.glb".
func GLBFileName(geometry string) string {
	return "brain_" + geometry + ".glb"
}

// GLBStats reports what BuildGLB put into the document.
type GLBStats struct {
	Nodes     int
	Vertices  int
	Triangles int
	Dropped   int // triangles referencing a missing vertex
}

// BuildGLB builds a glTF document with one node per loaded hemisphere of
// geometry. Vertex colours are region colours over curvature grey.
func BuildGLB(a *atlas.Atlas, geometry string) (*gltf.Document, GLBStats, error) {
	var stats GLBStats
	doc := gltf.NewDocument()
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "cortex",
		DoubleSided: true,
	})

	for _, hemi := range labels.Hemispheres {
		h := a.Hemisphere(hemi)
		mesh := h.Surface(geometry)
		if mesh == nil {
			continue
		}

		positions := make([][3]float32, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			positions[i] = v
		}

		var curv []float32
		if h.Curvature != nil {
			curv = h.Curvature.Values
		}
		shades := a.Regions.SurfaceColors(hemi, curv, len(mesh.Vertices))
		colors := make([][4]uint8, len(shades))
		for i, c := range shades {
			colors[i] = [4]uint8{c.R, c.G, c.B, c.A}
		}

		indices := make([]uint32, 0, len(mesh.Triangles)*3)
		for _, t := range mesh.Triangles {
			if !mesh.ValidTriangle(t) {
				stats.Dropped++
				continue
			}
			indices = append(indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
		}
		if len(indices) == 0 {
			continue
		}

		attributes := map[string]uint32{
			"POSITION": modeler.WritePosition(doc, positions),
			"COLOR_0":  modeler.WriteColor(doc, colors),
		}
		indicesAccessor := modeler.WriteIndices(doc, indices)

		name := string(hemi) + "_" + geometry
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: name,
			Primitives: []*gltf.Primitive{{
				Indices:    &indicesAccessor,
				Attributes: attributes,
				Material:   gltf.Index(0),
			}},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})

		stats.Nodes++
		stats.Vertices += len(positions)
		stats.Triangles += len(indices) / 3
	}

	if stats.Nodes == 0 {
		return nil, stats, errors.Errorf("export: no %s surface loaded", geometry)
	}
	return doc, stats, nil
}

// EncodeGLB writes doc as binary glTF.
func EncodeGLB(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return errors.Wrap(encoder.Encode(doc), "export: encode glb")
}

// WriteGLB builds and writes <path>.
func WriteGLB(path string, a *atlas.Atlas, geometry string) (GLBStats, error) {
	doc, stats, err := BuildGLB(a, geometry)
	if err != nil {
		return stats, err
	}
	f, err := os.Create(path)
	if err != nil {
		return stats, errors.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()
	if err := EncodeGLB(f, doc); err != nil {
		return stats, err
	}
	return stats, errors.Wrapf(f.Close(), "export: close %s", path)
}
