package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conveyor-ci/conveyor/internal/pipeline"
)

const (
	probeBanner = "=== API SERVICE TEST RESULTS ==="
	probeFooter = "All endpoints responded successfully!"
)

// FormatProbe renders the direct-probe report: one labeled block per
// endpoint with its response body pretty-printed, then a success footer.
// Bodies are formatted in memory — they never pass back through a shell.
// Non-JSON bodies are reported verbatim.
func FormatProbe(responses []pipeline.ProbeResponse) string {
	lines := []string{probeBanner, ""}
	for _, resp := range responses {
		lines = append(lines,
			fmt.Sprintf("Endpoint (GET %s):", resp.Path),
			prettyJSON(resp.Body),
			"",
		)
	}
	lines = append(lines, probeFooter)
	return strings.Join(lines, "\n")
}

func prettyJSON(body string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(body)), "", "  "); err != nil {
		return body
	}
	return buf.String()
}
