package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fs-atlas-decoder/internal/config"
	"fs-atlas-decoder/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fsatlas",
	Short: "Decode FreeSurfer surfaces, curvature and annotations",
	Long: `fsatlas reads a FreeSurfer subject directory (surf/ and label/) and
exports it for a browser viewer: per-hemisphere mesh JSON with curvature,
labels.json with named regions, binary glTF, and preview snapshots.

It can also inspect single files and serve a loaded subject over HTTP.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file (.json or .toml)")
	pf.String("subjects-dir", "", "FreeSurfer subjects directory (default: data)")
	pf.String("subject", "", "Subject name (default: fsaverage)")
	pf.String("parc", "", "Parcellation (default: aparc.a2009s)")
	pf.Int("workers", 0, "Number of decode workers (default: NumCPU)")
	pf.String("log-level", "", "Log level: trace, debug, info, warn, error")
	pf.Bool("no-color", false, "Disable coloured log output")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config and applies the persistent flags plus any
// command-specific overrides.
func loadConfig(cmd *cobra.Command, extra config.Flags) (config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	flags := extra
	flags.SubjectsDir, _ = cmd.Flags().GetString("subjects-dir")
	flags.Subject, _ = cmd.Flags().GetString("subject")
	flags.Parcellation, _ = cmd.Flags().GetString("parc")
	flags.Workers, _ = cmd.Flags().GetInt("workers")
	cfg.Resolve(flags)
	return cfg, nil
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	lc := logging.DefaultConfig()
	if raw, _ := cmd.Flags().GetString("log-level"); raw != "" {
		if lvl, ok := logging.ParseLevel(raw); ok {
			lc.Level = lvl
		}
	}
	lc.NoColor, _ = cmd.Flags().GetBool("no-color")
	return logging.New("fsatlas", lc)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fsatlas version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}
