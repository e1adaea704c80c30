package pipeline_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/conveyor-ci/conveyor/internal/pipeline"
)

type connectCall struct {
	Network   string
	Container string
	Aliases   []string
}

// fakeRuntime is an in-memory pipeline.Runtime. It records every call and, by
// default, succeeds: commands "run" with a synthetic stdout and commit a fresh
// layer image, curl commands answer with the contract payloads. Tests inject
// behavior through the hooks.
type fakeRuntime struct {
	mu sync.Mutex

	images          []string
	volumes         []string
	networks        []string
	removedNetworks []string
	removedImages   []string
	connects        []connectCall
	runs            []pipeline.ContainerSpec
	started         []pipeline.ContainerSpec
	stopped         []string

	layerSeq int
	svcSeq   int

	ensureImageErr func(ref string) error
	onRun          func(spec pipeline.ContainerSpec) (pipeline.CommandResult, error, bool)
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{}
}

func (f *fakeRuntime) EnsureImage(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureImageErr != nil {
		if err := f.ensureImageErr(ref); err != nil {
			return err
		}
	}
	f.images = append(f.images, ref)
	return nil
}

func (f *fakeRuntime) EnsureVolume(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, name)
	return nil
}

func (f *fakeRuntime) RunCommand(ctx context.Context, spec pipeline.ContainerSpec) (pipeline.CommandResult, error) {
	if f.onRun != nil {
		if res, err, handled := f.onRun(spec); handled {
			f.record(spec)
			return res, err
		}
	}
	f.record(spec)

	if len(spec.Command) > 0 && spec.Command[0] == "curl" {
		return f.answerCurl(spec)
	}

	f.mu.Lock()
	f.layerSeq++
	layer := fmt.Sprintf("layer-%d", f.layerSeq)
	f.mu.Unlock()

	out := fmt.Sprintf("ran: %s\n", strings.Join(spec.Command, " "))
	return pipeline.CommandResult{Stdout: out, Combined: out, ImageRef: layer}, nil
}

func (f *fakeRuntime) answerCurl(spec pipeline.ContainerSpec) (pipeline.CommandResult, error) {
	url := spec.Command[len(spec.Command)-1]
	var body string
	switch {
	case strings.HasSuffix(url, "/health"):
		body = `{"status":"healthy","service":"hello-world"}`
	default:
		body = `{"message":"Hello, World!"}`
	}
	// Probe commands do not layer; no image committed.
	return pipeline.CommandResult{Stdout: body, Combined: body}, nil
}

func (f *fakeRuntime) record(spec pipeline.ContainerSpec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, spec)
}

func (f *fakeRuntime) StartContainer(ctx context.Context, spec pipeline.ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, spec)
	f.svcSeq++
	return fmt.Sprintf("svc-%d", f.svcSeq), nil
}

func (f *fakeRuntime) StopContainer(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeRuntime) CreateNetwork(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networks = append(f.networks, name)
	return nil
}

func (f *fakeRuntime) RemoveNetwork(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedNetworks = append(f.removedNetworks, name)
	return nil
}

func (f *fakeRuntime) ConnectAlias(ctx context.Context, networkName, containerID string, aliases []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, connectCall{Network: networkName, Container: containerID, Aliases: aliases})
	return nil
}

func (f *fakeRuntime) RemoveImage(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedImages = append(f.removedImages, ref)
	return nil
}

// snapshots for assertions without data races

func (f *fakeRuntime) Runs() []pipeline.ContainerSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.ContainerSpec(nil), f.runs...)
}

func (f *fakeRuntime) Started() []pipeline.ContainerSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.ContainerSpec(nil), f.started...)
}

func (f *fakeRuntime) Stopped() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stopped...)
}

func (f *fakeRuntime) Networks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.networks...)
}

func (f *fakeRuntime) RemovedNetworks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removedNetworks...)
}

func (f *fakeRuntime) RemovedImages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removedImages...)
}

func (f *fakeRuntime) Connects() []connectCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]connectCall(nil), f.connects...)
}
