package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conveyor-ci/conveyor/internal/pipeline"
	"github.com/conveyor-ci/conveyor/internal/report"
)

func newUnitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unit",
		Short: "Run the unit test suite in a fresh container",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTarget(cmd, pipeline.TargetUnit)
		},
	}
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <path>",
		Short: "Run the tests at a specific path in a fresh container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTarget(cmd, pipeline.Target(args[0]))
		},
	}
}

func runTarget(cmd *cobra.Command, target pipeline.Target) error {
	p, src, cleanup, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := p.RunTests(cmd.Context(), src, cfg.Pipeline.PythonVersion, target)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func newMatrixCmd() *cobra.Command {
	var (
		versionList string
		exportPath  string
		summary     bool
	)
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Run unit tests concurrently across a version matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionList == "" {
				versionList = cfg.Pipeline.MatrixVersions
			}
			versions, err := pipeline.ParseVersions(versionList)
			if err != nil {
				return err
			}

			p, src, cleanup, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result := p.RunMatrix(cmd.Context(), src, versions)
			fmt.Fprintln(cmd.OutOrStdout(), report.FormatMatrix(result))
			if summary {
				fmt.Fprintln(cmd.OutOrStdout(), report.MatrixSummary(result))
			}
			if exportPath != "" {
				if err := report.ExportMatrixXLSX(result, exportPath); err != nil {
					return err
				}
			}
			if result.Failed() {
				return fmt.Errorf("one or more matrix branches failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&versionList, "versions", "", "comma-separated runtime versions (default from config)")
	cmd.Flags().StringVar(&exportPath, "export", "", "write the matrix result to an .xlsx file")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a per-version summary table")
	return cmd
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Start the service and probe its HTTP endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, src, cleanup, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			responses, err := p.ProbeService(cmd.Context(), src, cfg.Pipeline.PythonVersion)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.FormatProbe(responses))
			return nil
		},
	}
}

func newE2ECmd() *cobra.Command {
	return &cobra.Command{
		Use:   "e2e",
		Short: "Run the delegated integration tests against a live service",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, src, cleanup, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out, err := p.IntegrationTest(cmd.Context(), src, cfg.Pipeline.PythonVersion)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
