package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/config"
	"fs-atlas-decoder/internal/labels"
	"fs-atlas-decoder/internal/raster"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render snapshot images of each hemisphere",
	Long: `Render each hemisphere with region colours over curvature shading and
write <hemi>_<geometry>_<view>.<format> to the output directory.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringP("output", "o", "", "Output directory (default: <subjects-dir>/json)")
	previewCmd.Flags().StringP("geometry", "g", "", "Geometry (default: inflated)")
	previewCmd.Flags().String("hemi", "", "Render only this hemisphere (lh or rh)")
	previewCmd.Flags().String("view", "", "View: lateral, medial, dorsal, ventral, anterior, posterior, all")
	previewCmd.Flags().Int("size", 0, "Output size in pixels (default: 512)")
	previewCmd.Flags().String("format", "webp", "Image format: webp, tga")
}

func runPreview(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	geometry, _ := cmd.Flags().GetString("geometry")
	hemiFlag, _ := cmd.Flags().GetString("hemi")
	viewFlag, _ := cmd.Flags().GetString("view")
	size, _ := cmd.Flags().GetInt("size")
	formatFlag, _ := cmd.Flags().GetString("format")

	allViews := viewFlag == "all"
	if allViews {
		viewFlag = ""
	}
	cfg, err := loadConfig(cmd, config.Flags{OutputDir: output, Geometry: geometry, PreviewSize: size, View: viewFlag})
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	format, err := raster.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	views := raster.Views
	if !allViews {
		view, err := raster.ParseView(cfg.Preview.View)
		if err != nil {
			return err
		}
		views = []raster.View{view}
	}
	hemis := labels.Hemispheres
	if hemiFlag != "" {
		hemi, err := labels.ParseHemisphere(hemiFlag)
		if err != nil {
			return err
		}
		hemis = []labels.Hemisphere{hemi}
	}

	a, err := atlas.Load(context.Background(), os.DirFS(cfg.SubjectsDir), atlas.Options{
		Subject:      cfg.Subject,
		Parcellation: cfg.Parcellation,
		Geometries:   []string{cfg.Geometry},
		Workers:      cfg.Workers,
	}, logger)
	if err != nil {
		return fmt.Errorf("load subject: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	for _, hemi := range hemis {
		h := a.Hemisphere(hemi)
		for _, view := range views {
			img := raster.Snapshot(raster.Hemisphere{
				Hemi:      hemi,
				Mesh:      h.Surface(cfg.Geometry),
				Curvature: h.Curvature,
				Regions:   h.Regions,
			}, view, cfg.Preview.Size, cfg.Preview.Supersample)

			var buf bytes.Buffer
			if err := raster.Encode(&buf, img, format); err != nil {
				return err
			}
			name := fmt.Sprintf("%s_%s_%s.%s", hemi, cfg.Geometry, view, format)
			if err := os.WriteFile(filepath.Join(cfg.OutputDir, name), buf.Bytes(), 0644); err != nil {
				return err
			}
			logger.Info().Str("file", name).Int("bytes", buf.Len()).Msg("wrote preview")
		}
	}
	return nil
}
