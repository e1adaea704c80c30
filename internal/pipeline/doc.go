// Package pipeline implements the containerized test pipeline: environment
// construction, layered command execution, test targets, the concurrent
// version matrix, and the lifecycle of the application service used by
// integration stages.
//
// # Data Flow
//
//	source tree ──► BuildEnvironment ──┬──► RunTests ──────────► output
//	                                   │
//	                                   ├──► RunMatrix ─────────► MatrixResult
//	                                   │
//	                                   └──► StartService ──► Bind ──┬──► ProbeService
//	                                                                └──► IntegrationTest
//
// # Environments
//
// An Environment is an immutable value. RunCommands executes a command
// sequence by materializing one container per command and committing the
// filesystem of each successful command as the base image of the next, so a
// dependency install persists for the test run that follows it. Two builds
// from identical inputs produce environments that behave identically.
//
// # Matrix Runs
//
// RunMatrix fans the unit target out across N versions on a worker pool with
// one worker per branch. Branch failures are contained as labeled outcomes;
// results are aggregated in input order via index-addressed slots, never in
// completion order.
//
// # Services and Bindings
//
// NewService returns a deferred description; StartService materializes it.
// Bind attaches the running service to a disposable per-orchestration
// network under a fixed alias, which is the only name by which attached
// environments can reach it. Service lifetime belongs to the ServiceHandle,
// not to any probe environment bound to it.
//
// Rendering of matrix and probe results is a presentation concern and lives
// in internal/report.
package pipeline
