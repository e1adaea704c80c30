package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conveyor-ci/conveyor/internal/config"
	"github.com/conveyor-ci/conveyor/internal/engine"
	"github.com/conveyor-ci/conveyor/internal/pipeline"
)

var (
	cfgFile       string
	sourceDir     string
	socket        string
	pythonVersion string

	cfg *config.Configuration
)

var rootCmd = &cobra.Command{
	Use:   "conveyor",
	Short: "Run a Python service's test suite in isolated containers",
	Long: `conveyor builds reproducible container environments for a Python web
service, runs its test targets inside them (optionally fanned out across a
version matrix), and validates the live service through network bindings.`,
	// SilenceUsage avoids printing usage on pipeline failures we report
	// ourselves.
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source", ".", "path to the source tree under test")
	rootCmd.PersistentFlags().StringVar(&socket, "socket", "", "podman socket URI (overrides config)")
	rootCmd.PersistentFlags().StringVar(&pythonVersion, "python-version", "", "runtime version (overrides config)")

	rootCmd.AddCommand(newUnitCmd())
	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newMatrixCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newE2ECmd())
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	if socket != "" {
		cfg.Engine.Socket = socket
	}
	if pythonVersion != "" {
		cfg.Pipeline.PythonVersion = pythonVersion
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if lvl, lvlErr := zapcore.ParseLevel(cfg.LogLevel); lvlErr == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// newPipeline wires the Podman engine and resolves the source tree. The
// returned cleanup removes committed layer images.
func newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, pipeline.SourceTree, func(), error) {
	ctx := cmd.Context()

	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, pipeline.SourceTree{}, nil, fmt.Errorf("resolving source dir: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, pipeline.SourceTree{}, nil, fmt.Errorf("source dir %s: %w", abs, err)
	}

	eng, err := engine.New(ctx, cfg.Engine.Socket)
	if err != nil {
		return nil, pipeline.SourceTree{}, nil, err
	}

	p := pipeline.New(eng, cfg)
	cleanup := func() {
		p.Close(ctx)
		_ = zap.L().Sync()
	}
	return p, pipeline.SourceTree{Dir: abs}, cleanup, nil
}
