// Package server exposes a loaded atlas over read-only HTTP endpoints.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/export"
	"fs-atlas-decoder/internal/labels"
	"fs-atlas-decoder/internal/raster"
)

// Options configures the endpoints.
type Options struct {
	Geometry    string // default geometry when a request names none
	PreviewSize int
	Supersample int
	View        raster.View // default preview view
}

// Server serves one atlas. Rendered previews and models are cached.
type Server struct {
	atlas  *atlas.Atlas
	opts   Options
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

// cacheEntry is built once; concurrent requests for the same key wait on it.
type cacheEntry struct {
	once sync.Once
	data []byte
	err  error
}

// New returns a server for a.
func New(a *atlas.Atlas, opts Options, logger zerolog.Logger) *Server {
	if opts.Geometry == "" && len(a.Geometries) > 0 {
		opts.Geometry = a.Geometries[0]
	}
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = 512
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	if opts.View == "" {
		opts.View = raster.Lateral
	}
	return &Server{
		atlas:  a,
		opts:   opts,
		logger: logger,
		cache:  make(map[string]*cacheEntry),
	}
}

// Handler returns the routed handler wrapped with recovery, CORS,
// compression and access logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Methods(http.MethodGet).Subrouter()
	api.HandleFunc("/manifest", s.handleManifest)
	api.HandleFunc("/labels", s.handleLabels)
	api.HandleFunc("/mesh/{hemi}", s.handleMesh)
	api.HandleFunc("/preview/{hemi}.{format:webp|tga}", s.handlePreview)
	api.HandleFunc("/model.glb", s.handleModel)

	h := handlers.CompressHandler(r)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)(h)
	h = handlers.RecoveryHandler()(h)
	return handlers.LoggingHandler(s.logger.With().Str("component", "http").Logger(), h)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("serving atlas")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server: listen")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server: shutdown")
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	m := export.Manifest{Subject: s.atlas.Subject, Parcellation: s.atlas.Parcellation, Files: []export.ManifestEntry{}}
	for _, geom := range s.atlas.Geometries {
		for _, hemi := range labels.Hemispheres {
			mesh := s.atlas.Hemisphere(hemi).Surface(geom)
			if mesh == nil {
				continue
			}
			m.Files = append(m.Files, export.ManifestEntry{
				File:      fmt.Sprintf("/api/mesh/%s?geometry=%s", hemi, geom),
				Kind:      "mesh",
				Hemi:      string(hemi),
				Geometry:  geom,
				Vertices:  mesh.NumVertices,
				Triangles: mesh.NumFaces,
			})
		}
		m.Files = append(m.Files, export.ManifestEntry{
			File:     "/api/model.glb?geometry=" + geom,
			Kind:     "glb",
			Geometry: geom,
		})
	}
	m.Files = append(m.Files, export.ManifestEntry{File: "/api/labels", Kind: "labels", Regions: len(s.atlas.Regions)})
	writeJSON(w, m)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, export.NewLabels(s.atlas.Regions))
}

func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	h, geom, err := s.hemisphere(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, export.NewMeshFile(h.Surface(geom), h.Curvature))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	h, geom, err := s.hemisphere(r)
	if err != nil {
		writeError(w, err)
		return
	}
	format, err := raster.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	view := s.opts.View
	if q := r.URL.Query().Get("view"); q != "" {
		if view, err = raster.ParseView(q); err != nil {
			writeError(w, badRequest(err))
			return
		}
	}

	key := fmt.Sprintf("preview/%s/%s/%s.%s", h.Hemi, geom, view, format)
	data, err := s.cached(key, func() ([]byte, error) {
		img := raster.Snapshot(raster.Hemisphere{
			Hemi:      h.Hemi,
			Mesh:      h.Surface(geom),
			Curvature: h.Curvature,
			Regions:   h.Regions,
		}, view, s.opts.PreviewSize, s.opts.Supersample)
		var buf bytes.Buffer
		if err := raster.Encode(&buf, img, format); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(data)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	geom := s.geometry(r)
	data, err := s.cached("model/"+geom, func() ([]byte, error) {
		doc, stats, err := export.BuildGLB(s.atlas, geom)
		if err != nil {
			return nil, notFound(err)
		}
		if stats.Dropped > 0 {
			s.logger.Warn().Str("geometry", geom).Int("dropped", stats.Dropped).Msg("skipped triangles with out-of-range indices")
		}
		var buf bytes.Buffer
		if err := export.EncodeGLB(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Write(data)
}

func (s *Server) geometry(r *http.Request) string {
	if g := r.URL.Query().Get("geometry"); g != "" {
		return g
	}
	return s.opts.Geometry
}

// hemisphere resolves the {hemi} route variable and the geometry query.
func (s *Server) hemisphere(r *http.Request) (*atlas.Hemisphere, string, error) {
	hemi, err := labels.ParseHemisphere(mux.Vars(r)["hemi"])
	if err != nil {
		return nil, "", badRequest(err)
	}
	geom := s.geometry(r)
	h := s.atlas.Hemisphere(hemi)
	if h.Surface(geom) == nil {
		return nil, "", notFound(errors.Errorf("no %s surface loaded for %s", geom, hemi))
	}
	return h, geom, nil
}

// cached returns the bytes for key, building them on first use. The lock only
// guards the map, so a slow build holds up requests for its own key alone.
// Failed builds are forgotten and retried on the next request.
func (s *Server) cached(key string, build func() ([]byte, error)) ([]byte, error) {
	s.mu.Lock()
	e, ok := s.cache[key]
	if !ok {
		e = &cacheEntry{}
		s.cache[key] = e
	}
	s.mu.Unlock()

	e.once.Do(func() {
		e.data, e.err = build()
	})
	if e.err != nil {
		s.mu.Lock()
		if s.cache[key] == e {
			delete(s.cache, key)
		}
		s.mu.Unlock()
		return nil, e.err
	}
	return e.data, nil
}

type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

func badRequest(err error) error { return &httpError{status: http.StatusBadRequest, err: err} }
func notFound(err error) error   { return &httpError{status: http.StatusNotFound, err: err} }

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var he *httpError
	if errors.As(err, &he) {
		status = he.status
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
