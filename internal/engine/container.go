package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/containers/podman/v5/pkg/bindings/containers"
	"github.com/containers/podman/v5/pkg/specgen"
	"github.com/google/uuid"
	nettypes "go.podman.io/common/libnetwork/types"
	"go.uber.org/zap"

	"github.com/conveyor-ci/conveyor/internal/pipeline"
)

const layerRepo = "conveyor/layer"

// generator renders a pipeline container description into a Podman spec. The
// source tree rides an overlay mount so in-container writes never touch the
// host copy; the dependency cache is a shared named volume.
func generator(spec pipeline.ContainerSpec) *specgen.SpecGenerator {
	s := specgen.NewSpecGenerator(spec.Image, false)
	s.Name = fmt.Sprintf("conveyor-%s", uuid.NewString()[:8])
	s.Env = spec.Env
	s.WorkDir = spec.WorkDir
	s.Command = spec.Command

	if spec.SourceDir != "" {
		s.OverlayVolumes = append(s.OverlayVolumes, &specgen.OverlayVolume{
			Source:      spec.SourceDir,
			Destination: spec.WorkDir,
		})
	}
	if spec.CacheVolume != "" {
		s.Volumes = append(s.Volumes, &specgen.NamedVolume{
			Name: spec.CacheVolume,
			Dest: spec.CachePath,
		})
	}
	if len(spec.Networks) > 0 {
		s.Networks = make(map[string]nettypes.PerNetworkOptions, len(spec.Networks))
		for name, aliases := range spec.Networks {
			s.Networks[name] = nettypes.PerNetworkOptions{Aliases: aliases}
		}
	}
	if len(spec.Expose) > 0 {
		s.Expose = make(map[uint16]string, len(spec.Expose))
		for _, port := range spec.Expose {
			s.Expose[port] = "tcp"
		}
	}
	return s
}

// RunCommand creates a container for the command, runs it to completion,
// captures its output and, when it exits zero, commits the container
// filesystem as the next layer image. The container itself is always removed.
func (e *Engine) RunCommand(ctx context.Context, spec pipeline.ContainerSpec) (pipeline.CommandResult, error) {
	log := zap.S().Named("engine")
	conn := e.callCtx(ctx)

	created, err := containers.CreateWithSpec(conn, generator(spec), nil)
	if err != nil {
		return pipeline.CommandResult{}, fmt.Errorf("creating container: %w", err)
	}
	defer func() {
		// Removal runs on e.conn so a cancelled caller still cleans up.
		opts := new(containers.RemoveOptions).WithForce(true).WithVolumes(false)
		if _, rmErr := containers.Remove(e.conn, created.ID, opts); rmErr != nil {
			log.Warnw("failed to remove container", "container", created.ID, "error", rmErr)
		}
	}()

	if err := containers.Start(conn, created.ID, nil); err != nil {
		return pipeline.CommandResult{}, fmt.Errorf("starting container: %w", err)
	}

	exitCode, err := containers.Wait(conn, created.ID, nil)
	if err != nil {
		return pipeline.CommandResult{}, fmt.Errorf("waiting for container: %w", err)
	}

	stdout, combined, err := e.collectLogs(conn, created.ID)
	if err != nil {
		return pipeline.CommandResult{}, fmt.Errorf("collecting logs: %w", err)
	}

	result := pipeline.CommandResult{
		ExitCode: int(exitCode),
		Stdout:   stdout,
		Combined: combined,
	}
	if exitCode != 0 {
		return result, nil
	}

	commitOpts := new(containers.CommitOptions).
		WithRepo(layerRepo).
		WithTag(uuid.NewString()[:12])
	committed, err := containers.Commit(conn, created.ID, commitOpts)
	if err != nil {
		return pipeline.CommandResult{}, fmt.Errorf("committing layer: %w", err)
	}
	result.ImageRef = committed.ID
	return result, nil
}

// collectLogs drains the container's stdout and stderr streams. The bindings
// deliver log lines on channels while Logs blocks, so the reader runs until
// Logs returns and then drains whatever is still buffered.
func (e *Engine) collectLogs(conn context.Context, id string) (string, string, error) {
	stdoutCh := make(chan string, 64)
	stderrCh := make(chan string, 64)

	logsDone := make(chan error, 1)
	go func() {
		opts := new(containers.LogOptions).WithStdout(true).WithStderr(true)
		logsDone <- containers.Logs(conn, id, opts, stdoutCh, stderrCh)
	}()

	var stdout, combined strings.Builder
	appendLine := func(line string, isStdout bool) {
		if isStdout {
			stdout.WriteString(line)
		}
		combined.WriteString(line)
	}

	for {
		select {
		case line := <-stdoutCh:
			appendLine(line, true)
		case line := <-stderrCh:
			appendLine(line, false)
		case err := <-logsDone:
			for {
				select {
				case line := <-stdoutCh:
					appendLine(line, true)
				case line := <-stderrCh:
					appendLine(line, false)
				default:
					return stdout.String(), combined.String(), err
				}
			}
		}
	}
}

// StartContainer starts a long-running container and returns its ID without
// waiting for it to exit.
func (e *Engine) StartContainer(ctx context.Context, spec pipeline.ContainerSpec) (string, error) {
	conn := e.callCtx(ctx)
	created, err := containers.CreateWithSpec(conn, generator(spec), nil)
	if err != nil {
		return "", fmt.Errorf("creating service container: %w", err)
	}
	if err := containers.Start(conn, created.ID, nil); err != nil {
		opts := new(containers.RemoveOptions).WithForce(true)
		if _, rmErr := containers.Remove(e.conn, created.ID, opts); rmErr != nil {
			zap.S().Named("engine").Warnw("failed to remove container", "container", created.ID, "error", rmErr)
		}
		return "", fmt.Errorf("starting service container: %w", err)
	}
	return created.ID, nil
}

// StopContainer stops and removes a long-running container.
func (e *Engine) StopContainer(ctx context.Context, id string) error {
	conn := e.callCtx(ctx)
	stopOpts := new(containers.StopOptions).WithTimeout(10)
	if err := containers.Stop(conn, id, stopOpts); err != nil {
		return fmt.Errorf("stopping container %s: %w", id, err)
	}
	rmOpts := new(containers.RemoveOptions).WithForce(true).WithVolumes(false)
	if _, err := containers.Remove(conn, id, rmOpts); err != nil {
		return fmt.Errorf("removing container %s: %w", id, err)
	}
	return nil
}
