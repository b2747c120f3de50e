package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/labels"
)

// Options controls which files Run writes.
type Options struct {
	Dir        string
	LabelsOnly bool // write labels.json and the manifest only
	GLB        bool // also write one binary glTF per geometry
}

// Run writes every loaded geometry of a, labels.json and manifest.json to
// opts.Dir and returns the manifest.
func Run(a *atlas.Atlas, opts Options, logger zerolog.Logger) (*Manifest, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "export: create %s", opts.Dir)
	}

	m := &Manifest{Subject: a.Subject, Parcellation: a.Parcellation}

	if !opts.LabelsOnly {
		for _, geom := range a.Geometries {
			for _, hemi := range labels.Hemispheres {
				h := a.Hemisphere(hemi)
				mesh := h.Surface(geom)
				if mesh == nil {
					continue
				}
				name, err := WriteMesh(opts.Dir, hemi, geom, mesh, h.Curvature)
				if err != nil {
					return nil, err
				}
				m.Files = append(m.Files, ManifestEntry{
					File:      name,
					Kind:      "mesh",
					Hemi:      string(hemi),
					Geometry:  geom,
					Vertices:  mesh.NumVertices,
					Triangles: mesh.NumFaces,
				})
				logger.Info().Str("file", name).Int("vertices", mesh.NumVertices).Msg("exported mesh")
			}

			if opts.GLB {
				name := GLBFileName(geom)
				stats, err := WriteGLB(filepath.Join(opts.Dir, name), a, geom)
				if err != nil {
					return nil, err
				}
				if stats.Dropped > 0 {
					logger.Warn().Str("file", name).Int("dropped", stats.Dropped).Msg("skipped triangles with out-of-range indices")
				}
				m.Files = append(m.Files, ManifestEntry{
					File:      name,
					Kind:      "glb",
					Geometry:  geom,
					Vertices:  stats.Vertices,
					Triangles: stats.Triangles,
				})
				logger.Info().Str("file", name).Int("nodes", stats.Nodes).Msg("exported glb")
			}
		}
	}

	name, err := WriteLabels(opts.Dir, a.Regions)
	if err != nil {
		return nil, err
	}
	m.Files = append(m.Files, ManifestEntry{File: name, Kind: "labels", Regions: len(a.Regions)})
	logger.Info().Str("file", name).Int("regions", len(a.Regions)).Msg("exported labels")

	if err := WriteManifest(filepath.Join(opts.Dir, ManifestFile), m); err != nil {
		return nil, err
	}
	return m, nil
}
