package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/rs/zerolog"
	"golang.org/x/image/webp"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/atlas/atlastest"
	"fs-atlas-decoder/internal/export"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	a, err := atlas.Load(context.Background(), atlastest.FS(), atlastest.Options("inflated", "white"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := New(a, Options{PreviewSize: 32, Supersample: 2}, zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("GET %s: read body: %v", path, err)
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestManifest(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/api/manifest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var m export.Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 2 geometries x (2 meshes + glb) + labels
	if m.Subject != atlastest.Subject || len(m.Files) != 7 {
		t.Errorf("manifest = %+v", m)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/labels", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "http://viewer.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
}

func TestMesh(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts, "/api/mesh/rh?geometry=white")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var mesh export.MeshFile
	if err := json.Unmarshal(body, &mesh); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(mesh.Vertices) != 4 || mesh.Vertices[0] != [3]float32{2, 0, 0} {
		t.Errorf("mesh = %+v", mesh)
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/api/mesh/left", http.StatusOK},
		{"/api/mesh/both", http.StatusBadRequest},
		{"/api/mesh/lh?geometry=pial", http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp, body := get(t, ts, tt.path); resp.StatusCode != tt.status {
			t.Errorf("GET %s = %d, want %d: %s", tt.path, resp.StatusCode, tt.status, body)
		}
	}
}

func TestLabels(t *testing.T) {
	ts := newTestServer(t)
	_, body := get(t, ts, "/api/labels")
	var regions map[string]export.LabelEntry
	if err := json.Unmarshal(body, &regions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(regions) != 4 || regions["postcentral-rh"].Color != "#dc1414" {
		t.Errorf("labels = %+v", regions)
	}
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts, "/api/preview/lh.webp?view=dorsal")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/webp" {
		t.Errorf("content type = %q", ct)
	}
	img, err := webp.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("webp.Decode: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	// Second request is served from the cache.
	_, again := get(t, ts, "/api/preview/lh.webp?view=dorsal")
	if !bytes.Equal(body, again) {
		t.Error("cached preview differs")
	}

	if resp, _ := get(t, ts, "/api/preview/lh.webp?view=oblique"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad view = %d", resp.StatusCode)
	}
	if resp, _ := get(t, ts, "/api/preview/rh.tga"); resp.StatusCode != http.StatusOK {
		t.Errorf("tga preview = %d", resp.StatusCode)
	}
	if resp, _ := get(t, ts, "/api/preview/rh.png"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("png preview = %d, want 404", resp.StatusCode)
	}
}

func TestModel(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts, "/api/model.glb")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(body)).Decode(&doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Nodes) != 2 || doc.Nodes[1].Name != "rh_inflated" {
		t.Errorf("nodes = %+v", doc.Nodes)
	}

	if resp, _ := get(t, ts, "/api/model.glb?geometry=pial"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing geometry = %d, want 404", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	if resp, _ := get(t, ts, "/api/nothing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route = %d", resp.StatusCode)
	}
}

func TestCacheBuildsDoNotBlockOtherKeys(t *testing.T) {
	s := New(&atlas.Atlas{}, Options{}, zerolog.Nop())

	release := make(chan struct{})
	started := make(chan struct{})
	slowDone := make(chan error, 1)
	go func() {
		_, err := s.cached("slow", func() ([]byte, error) {
			close(started)
			<-release
			return []byte("slow"), nil
		})
		slowDone <- err
	}()
	<-started

	fast := make(chan []byte, 1)
	go func() {
		data, _ := s.cached("fast", func() ([]byte, error) { return []byte("fast"), nil })
		fast <- data
	}()
	select {
	case data := <-fast:
		if string(data) != "fast" {
			t.Errorf("fast = %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fast key waited for an unrelated build")
	}

	close(release)
	if err := <-slowDone; err != nil {
		t.Fatalf("slow build: %v", err)
	}
}

func TestCacheBuildsOncePerKey(t *testing.T) {
	s := New(&atlas.Atlas{}, Options{}, zerolog.Nop())

	var builds atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.cached("k", func() ([]byte, error) {
				builds.Add(1)
				time.Sleep(10 * time.Millisecond)
				return []byte("v"), nil
			})
		}()
	}
	wg.Wait()
	if n := builds.Load(); n != 1 {
		t.Errorf("built %d times, want 1", n)
	}
}

func TestCacheRetriesFailedBuild(t *testing.T) {
	s := New(&atlas.Atlas{}, Options{}, zerolog.Nop())

	if _, err := s.cached("k", func() ([]byte, error) { return nil, notFound(io.EOF) }); err == nil {
		t.Fatal("expected build error")
	}
	data, err := s.cached("k", func() ([]byte, error) { return []byte("v"), nil })
	if err != nil || string(data) != "v" {
		t.Errorf("retry = %q, %v", data, err)
	}
}
