package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"fs-atlas-decoder/internal/freesurfer"
	"fs-atlas-decoder/internal/labels"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Detect, decode and summarize FreeSurfer files",
	Long: `Detect the format of each file (surface, curvature or annotation),
decode it and print a one-line summary. Recovered color-table problems are
logged as warnings. --dump prints the decoded structure with long lists cut
to --limit elements.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("dump", false, "Print a structural dump")
	inspectCmd.Flags().Int("limit", 8, "Elements kept per list in --dump output")
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	MaxDepth:                6,
}

func runInspect(cmd *cobra.Command, args []string) error {
	dump, _ := cmd.Flags().GetBool("dump")
	limit, _ := cmd.Flags().GetInt("limit")
	logger := newLogger(cmd)
	out := cmd.OutOrStdout()

	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("read failed")
			failed++
			continue
		}
		f, err := freesurfer.Decode(data)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("decode failed")
			failed++
			continue
		}

		fmt.Fprintf(out, "%s: %s\n", filepath.Base(path), summarize(f))
		if f.Annotation != nil && len(f.Annotation.Warnings) > 0 {
			logger.Warn().Str("file", path).Errs("warnings", f.Annotation.Warnings).Msg("color table incomplete")
		}
		if dump {
			writeDump(out, f, limit)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// summarize describes a decoded file in one line.
func summarize(f *freesurfer.File) string {
	switch f.Format {
	case freesurfer.FormatSurface:
		m := f.Surface
		s := fmt.Sprintf("surface, %d vertices, %d faces", m.NumVertices, m.NumFaces)
		if err := m.CheckTopology(); err != nil {
			s += ", bad topology"
		}
		if m.Comment != "" {
			s += fmt.Sprintf(", %q", m.Comment)
		}
		return s

	case freesurfer.FormatCurvature:
		c := f.Curvature
		lo, hi := c.Range()
		return fmt.Sprintf("curvature, %d vertices, %d values/vertex, range [%.3f, %.3f]",
			c.NumVertices, c.ValuesPerVertex, lo, hi)

	case freesurfer.FormatAnnotation:
		a := f.Annotation
		s := fmt.Sprintf("annotation, %d vertices", a.NumVertices)
		ct := a.ColorTable
		if ct == nil {
			return s + ", no color table"
		}
		s += fmt.Sprintf(", %s color table %d/%d entries", ct.Layout, len(ct.Entries), ct.Declared)
		// The hemisphere only qualifies names; the count is the same for both.
		regions := labels.Assemble(a, labels.Left)
		s += fmt.Sprintf(", %d regions", len(regions))
		if ct.Err != nil {
			s += fmt.Sprintf(" (%d dropped)", ct.Dropped())
		}
		return s
	}
	return f.Format.String()
}

func writeDump(w io.Writer, f *freesurfer.File, limit int) {
	switch f.Format {
	case freesurfer.FormatSurface:
		m := *f.Surface
		m.Vertices = head(m.Vertices, limit)
		m.Triangles = head(m.Triangles, limit)
		dumpConfig.Fdump(w, m)
	case freesurfer.FormatCurvature:
		c := *f.Curvature
		c.Values = head(c.Values, limit)
		dumpConfig.Fdump(w, c)
	case freesurfer.FormatAnnotation:
		a := *f.Annotation
		a.Labels = head(a.Labels, limit)
		if a.ColorTable != nil {
			ct := *a.ColorTable
			ct.Entries = head(ct.Entries, limit)
			a.ColorTable = &ct
		}
		dumpConfig.Fdump(w, a)
	}
}

func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
