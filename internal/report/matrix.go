// Package report renders structured pipeline results into their user-facing
// forms: the canonical text report, a console summary table and an .xlsx
// artifact. It holds no orchestration logic; everything here is pure
// formatting over values produced by internal/pipeline.
package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/conveyor-ci/conveyor/internal/pipeline"
)

const (
	matrixBanner = "=== MULTI-VERSION TEST RESULTS ==="
	delimiter    = 50
)

// FormatMatrix renders the canonical matrix report: a header banner, then one
// labeled PASSED/FAILED block per version in input order, each followed by a
// visual delimiter.
func FormatMatrix(result pipeline.MatrixResult) string {
	lines := []string{matrixBanner, ""}
	for _, outcome := range result {
		if outcome.Passed() {
			lines = append(lines, fmt.Sprintf("Python %s: PASSED\n%s", outcome.Version, outcome.Output))
		} else {
			lines = append(lines, fmt.Sprintf("Python %s: FAILED\n%s", outcome.Version, outcome.Err.Error()))
		}
		lines = append(lines, strings.Repeat("=", delimiter), "")
	}
	return strings.Join(lines, "\n")
}

// MatrixSummary renders a compact one-row-per-version table for console
// output. The block report above stays the canonical format; this is an
// at-a-glance addition.
func MatrixSummary(result pipeline.MatrixResult) string {
	t := table.NewWriter()
	t.SetTitle("Matrix Summary")
	t.AppendHeader(table.Row{"Version", "Outcome"})
	for _, outcome := range result {
		status := "PASSED"
		if !outcome.Passed() {
			status = "FAILED"
		}
		t.AppendRow(table.Row{outcome.Version, status})
	}
	return t.Render()
}
