package pipeline

import (
	"context"

	perrors "github.com/conveyor-ci/conveyor/pkg/errors"
)

// RunTests builds a fresh environment for the version, installs the package
// with its test extras and runs pytest scoped to the target. Each call is
// fully independent; the only state shared with other calls is the dependency
// cache volume.
//
// Failures are wrapped in a TestExecutionFailedError; the captured output of
// the failing command (including partial test results) stays available
// through the error chain.
func (p *Pipeline) RunTests(ctx context.Context, src SourceTree, version string, target Target) (string, error) {
	env, err := p.BuildEnvironment(ctx, src, version)
	if err != nil {
		return "", perrors.NewTestExecutionFailedError(string(target), err)
	}
	return p.runTestsIn(ctx, env, target)
}

// runTestsIn runs the target against a prepared environment. The integration
// orchestrator uses it to inject a service binding before the run.
func (p *Pipeline) runTestsIn(ctx context.Context, env Environment, target Target) (string, error) {
	out, _, err := p.RunCommands(ctx, env, [][]string{
		{"uv", "pip", "install", "-e", ".[test]"},
		{"pytest", target.scope(), "-v", "--tb=short"},
	})
	if err != nil {
		return "", perrors.NewTestExecutionFailedError(string(target), err)
	}
	return out, nil
}
