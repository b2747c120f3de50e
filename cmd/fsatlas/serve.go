package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fs-atlas-decoder/internal/atlas"
	"fs-atlas-decoder/internal/config"
	"fs-atlas-decoder/internal/raster"
	"fs-atlas-decoder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a loaded subject over HTTP",
	Long: `Load the subject once and serve it read-only:

  GET /api/manifest
  GET /api/mesh/{hemi}?geometry=
  GET /api/labels
  GET /api/preview/{hemi}.webp?view=&geometry=
  GET /api/model.glb?geometry=
  GET /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default: :8080)")
	serveCmd.Flags().StringP("geometry", "g", "", "Default geometry (default: inflated)")
	serveCmd.Flags().Bool("all", false, "Load every geometry type")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	geometry, _ := cmd.Flags().GetString("geometry")
	all, _ := cmd.Flags().GetBool("all")

	cfg, err := loadConfig(cmd, config.Flags{Addr: addr, Geometry: geometry})
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	view, err := raster.ParseView(cfg.Preview.View)
	if err != nil {
		return err
	}
	geometries := []string{cfg.Geometry}
	if all {
		geometries = atlas.Geometries()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := atlas.Load(ctx, os.DirFS(cfg.SubjectsDir), atlas.Options{
		Subject:      cfg.Subject,
		Parcellation: cfg.Parcellation,
		Geometries:   geometries,
		Workers:      cfg.Workers,
	}, logger)
	if err != nil {
		return fmt.Errorf("load subject: %w", err)
	}

	srv := server.New(a, server.Options{
		Geometry:    cfg.Geometry,
		PreviewSize: cfg.Preview.Size,
		Supersample: cfg.Preview.Supersample,
		View:        view,
	}, logger)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
