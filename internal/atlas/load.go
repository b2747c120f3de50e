package atlas

import (
	"context"
	"io/fs"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"fs-atlas-decoder/internal/freesurfer"
	"fs-atlas-decoder/internal/labels"
)

// Options selects what Load reads.
type Options struct {
	Subject      string
	Parcellation string
	Geometries   []string // defaults to ["inflated"]
	LabelsOnly   bool     // skip surfaces and curvature
	Workers      int      // defaults to NumCPU
}

type jobKind int

const (
	jobSurface jobKind = iota
	jobCurvature
	jobAnnotation
)

func (k jobKind) String() string {
	switch k {
	case jobSurface:
		return "surface"
	case jobCurvature:
		return "curvature"
	default:
		return "annotation"
	}
}

type job struct {
	kind     jobKind
	hemi     labels.Hemisphere
	geometry string
	path     string
}

type result struct {
	surface    *freesurfer.SurfaceMesh
	curvature  *freesurfer.CurvatureField
	annotation *freesurfer.Annotation
	err        error
}

// Load decodes the requested files for both hemispheres on a bounded
// worker pool. Cancelling ctx stops jobs that have not started yet; a
// decode already running finishes.
func Load(ctx context.Context, fsys fs.FS, opts Options, logger zerolog.Logger) (*Atlas, error) {
	if len(opts.Geometries) == 0 {
		opts.Geometries = []string{"inflated"}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	jobs := plan(opts)
	results := make([]result, len(jobs))
	var processed atomic.Int64
	start := time.Now()

	jobChan := make(chan int, opts.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx].err = err
					continue
				}
				results[idx] = runJob(fsys, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug().
		Int64("files", processed.Load()).
		Dur("elapsed", time.Since(start)).
		Str("subject", opts.Subject).
		Msg("decoded subject files")

	return assemble(opts, jobs, results, logger)
}

func plan(opts Options) []job {
	var jobs []job
	for _, hemi := range labels.Hemispheres {
		if !opts.LabelsOnly {
			for _, geom := range opts.Geometries {
				jobs = append(jobs, job{kind: jobSurface, hemi: hemi, geometry: geom, path: SurfacePath(opts.Subject, hemi, geom)})
			}
			jobs = append(jobs, job{kind: jobCurvature, hemi: hemi, path: CurvaturePath(opts.Subject, hemi)})
		}
		jobs = append(jobs, job{kind: jobAnnotation, hemi: hemi, path: AnnotationPath(opts.Subject, hemi, opts.Parcellation)})
	}
	return jobs
}

func runJob(fsys fs.FS, j job) result {
	data, err := fs.ReadFile(fsys, j.path)
	if err != nil {
		return result{err: errors.Wrapf(err, "atlas: read %s", j.path)}
	}

	var r result
	switch j.kind {
	case jobSurface:
		r.surface, err = freesurfer.DecodeSurface(data)
	case jobCurvature:
		r.curvature, err = freesurfer.DecodeCurvature(data)
	case jobAnnotation:
		r.annotation, err = freesurfer.DecodeAnnotation(data)
	}
	if err != nil {
		return result{err: errors.Wrapf(err, "atlas: decode %s %s", j.kind, j.path)}
	}
	return r
}

func assemble(opts Options, jobs []job, results []result, logger zerolog.Logger) (*Atlas, error) {
	a := &Atlas{
		Subject:      opts.Subject,
		Parcellation: opts.Parcellation,
		Geometries:   opts.Geometries,
		Hemispheres:  make(map[labels.Hemisphere]*Hemisphere, len(labels.Hemispheres)),
	}
	if opts.LabelsOnly {
		a.Geometries = nil
	}
	for _, hemi := range labels.Hemispheres {
		a.Hemispheres[hemi] = &Hemisphere{Hemi: hemi, Surfaces: make(map[string]*freesurfer.SurfaceMesh)}
	}

	// First failure in job order wins
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		h := a.Hemispheres[jobs[i].hemi]
		switch jobs[i].kind {
		case jobSurface:
			h.Surfaces[jobs[i].geometry] = r.surface
		case jobCurvature:
			h.Curvature = r.curvature
		case jobAnnotation:
			h.Annotation = r.annotation
			logWarnings(logger, jobs[i].path, r.annotation)
		}
	}

	perHemi := make([]labels.Regions, 0, len(labels.Hemispheres))
	for _, hemi := range labels.Hemispheres {
		h := a.Hemispheres[hemi]
		if err := checkVertexCounts(opts, h); err != nil {
			return nil, err
		}
		h.Regions = labels.Assemble(h.Annotation, hemi)
		perHemi = append(perHemi, h.Regions)
		logger.Info().
			Str("hemi", string(hemi)).
			Int("regions", len(h.Regions)).
			Msg("assembled regions")
	}
	a.Regions = labels.Merge(perHemi...)
	return a, nil
}

func checkVertexCounts(opts Options, h *Hemisphere) error {
	if h.Curvature == nil {
		return nil
	}
	for _, geom := range opts.Geometries {
		mesh := h.Surfaces[geom]
		if mesh == nil {
			continue
		}
		if mesh.NumVertices != h.Curvature.NumVertices {
			return errors.Wrapf(ErrVertexMismatch, "%s: %s has %d vertices, curvature has %d",
				h.Hemi, geom, mesh.NumVertices, h.Curvature.NumVertices)
		}
	}
	return nil
}

func logWarnings(logger zerolog.Logger, path string, ann *freesurfer.Annotation) {
	if ann == nil || len(ann.Warnings) == 0 {
		return
	}
	ev := logger.Warn().Str("file", path)
	if ct := ann.ColorTable; ct != nil {
		ev = ev.Int("declared", ct.Declared).Int("decoded", len(ct.Entries)).Int("dropped", ct.Dropped())
	}
	ev.Errs("warnings", ann.Warnings).Msg("color table incomplete")
}
