// Command flavorwheel renders and inspects flavor wheels.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/flavor-wheel/internal/config"
	"github.com/ha1tch/flavor-wheel/internal/logging"
	"github.com/ha1tch/flavor-wheel/pkg/loader"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flavorwheel",
	Short: "Flavor wheel toolkit",
	Long: `flavorwheel draws coffee, tea and luxury flavor wheels and turns a set of
picked flavors into tasting notes.

Datasets are named in the config file (builtin:coffee, a path, or a URL);
anywhere a dataset is expected you may also pass a file path directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(renderCmd, infoCmd, validateCmd, noteCmd, themesCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sourceFor resolves a dataset name from the config, or treats arg as a
// path or URL.
func sourceFor(arg string) loader.Source {
	if src, ok := cfg.Datasets[arg]; ok {
		return loader.Source(src)
	}
	return loader.Source(arg)
}

// loadDoc loads one taxonomy named on the command line.
func loadDoc(ctx context.Context, arg string) (*taxonomy.Document, error) {
	doc, err := loader.New(logger).LoadOne(ctx, sourceFor(arg))
	if err != nil {
		logger.Error("load failed", zap.String("source", arg), zap.Error(err))
		return nil, fmt.Errorf("loading %s: %w", arg, err)
	}
	return doc, nil
}

// loadThemes returns the built-in themes plus any configured theme files.
func loadThemes() (*theme.Registry, error) {
	reg := theme.Builtin()
	for _, path := range cfg.ThemeFiles {
		if err := reg.AddFile(path); err != nil {
			return nil, fmt.Errorf("loading themes from %s: %w", path, err)
		}
	}
	return reg, nil
}

// wheelOptions builds chart options from the config.
func wheelOptions(reg *theme.Registry) wheel.Options {
	return wheel.Options{
		Width:        cfg.Width,
		CenterRadius: cfg.CenterRadius,
		Lang:         cfg.Lang,
		Theme:        cfg.Theme,
		Themes:       reg,
		Duration:     cfg.Transition(),
		Ordering:     cfg.WheelOrdering(),
		Logger:       logger,
	}
}

// splitIDs accepts repeated or comma-separated ids.
func splitIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
