package pipeline

import (
	"context"
)

// SourceTree is an immutable snapshot of the project under test. The
// directory is attached to containers through an overlay mount, so nothing
// running inside the pipeline can modify it.
type SourceTree struct {
	Dir string
}

// Target selects which part of the test suite a Test Executor run covers.
// TargetUnit and TargetE2E map to the fixed suite directories; any other
// value is treated as an explicit pytest path.
type Target string

const (
	TargetUnit Target = "unit"
	TargetE2E  Target = "e2e"
)

func (t Target) scope() string {
	switch t {
	case TargetUnit:
		return "tests/unit"
	case TargetE2E:
		return "tests/e2e"
	default:
		return string(t)
	}
}

// ContainerSpec is the declarative description of a single container the
// runtime materializes: base image, environment, workdir, the overlay-mounted
// source tree, the shared dependency cache, network attachments and the
// command to run.
type ContainerSpec struct {
	Image       string
	Env         map[string]string
	WorkDir     string
	SourceDir   string
	CacheVolume string
	CachePath   string
	// Networks maps network name to the aliases this container is
	// resolvable by inside that network.
	Networks map[string][]string
	Expose   []uint16
	Command  []string
}

// CommandResult is the transient outcome of one command run to completion
// inside a container. ImageRef holds the committed filesystem layer when the
// command exited zero, and becomes the base image of the next layered
// environment.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Combined string
	ImageRef string
}

// Runtime is the container runtime boundary. The production implementation
// drives Podman through its API bindings (internal/engine); tests substitute
// an in-memory fake.
type Runtime interface {
	// EnsureImage makes the image available locally, pulling if absent.
	EnsureImage(ctx context.Context, ref string) error
	// EnsureVolume creates the named volume if it does not exist yet.
	// Acquisition is non-blocking; concurrent callers may share the volume.
	EnsureVolume(ctx context.Context, name string) error
	// RunCommand runs spec.Command to completion and captures its output.
	// A nonzero exit is reported in the result, not as an error; the
	// returned error covers runtime-level failures only.
	RunCommand(ctx context.Context, spec ContainerSpec) (CommandResult, error)
	// StartContainer starts spec as a long-running container and returns
	// its ID without waiting for it to exit.
	StartContainer(ctx context.Context, spec ContainerSpec) (string, error)
	// StopContainer stops and removes a container started by StartContainer.
	StopContainer(ctx context.Context, id string) error
	CreateNetwork(ctx context.Context, name string) error
	// RemoveNetwork force-removes the network, disconnecting any
	// containers still attached.
	RemoveNetwork(ctx context.Context, name string) error
	// ConnectAlias attaches a running container to a network under the
	// given aliases.
	ConnectAlias(ctx context.Context, networkName, containerID string, aliases []string) error
	// RemoveImage deletes a committed layer image.
	RemoveImage(ctx context.Context, ref string) error
}
