package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/config"
	"fs-atlas-decoder/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export surfaces, curvature and labels as JSON",
	Long: `Export both hemispheres of a subject to the output directory:

  <hemi>_<geometry>.json  vertices, triangles and curvature
  labels.json             regions keyed "<name>-<hemi>" with vertices and colour
  manifest.json           every file written
  brain_<geometry>.glb    with --glb, one node per hemisphere`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output directory (default: <subjects-dir>/json)")
	exportCmd.Flags().StringP("geometry", "g", "", "Geometry: inflated, original, pial, white (default: inflated)")
	exportCmd.Flags().Bool("all", false, "Export every geometry type")
	exportCmd.Flags().Bool("labels-only", false, "Only export labels (skip geometry)")
	exportCmd.Flags().Bool("glb", false, "Also write binary glTF")
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	geometry, _ := cmd.Flags().GetString("geometry")
	all, _ := cmd.Flags().GetBool("all")
	labelsOnly, _ := cmd.Flags().GetBool("labels-only")
	glb, _ := cmd.Flags().GetBool("glb")

	cfg, err := loadConfig(cmd, config.Flags{OutputDir: output, Geometry: geometry})
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	geometries := []string{cfg.Geometry}
	if all {
		geometries = atlas.Geometries()
	}

	start := time.Now()
	a, err := atlas.Load(context.Background(), os.DirFS(cfg.SubjectsDir), atlas.Options{
		Subject:      cfg.Subject,
		Parcellation: cfg.Parcellation,
		Geometries:   geometries,
		LabelsOnly:   labelsOnly,
		Workers:      cfg.Workers,
	}, logger)
	if err != nil {
		return fmt.Errorf("load subject: %w", err)
	}

	m, err := export.Run(a, export.Options{Dir: cfg.OutputDir, LabelsOnly: labelsOnly, GLB: glb}, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Int("files", len(m.Files)).
		Int("regions", len(a.Regions)).
		Str("output", cfg.OutputDir).
		Dur("elapsed", time.Since(start).Round(time.Millisecond)).
		Msg("export complete")
	return nil
}
