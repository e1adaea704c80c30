package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	perrors "github.com/conveyor-ci/conveyor/pkg/errors"
)

const probeClientImage = "alpine:latest"

// readinessBudget bounds how long an orchestration call waits for the
// service to answer its first health probe before giving up.
const readinessBudget = 30 * time.Second

// ProbeResponse is the captured body of one probe request, keyed by path.
type ProbeResponse struct {
	Path string
	Body string
}

// ProbeEnvironment builds the minimal disposable environment used to probe a
// bound service: a stock alpine image with an HTTP client installed. The curl
// install is layered, so repeated probe commands reuse the committed image.
func (p *Pipeline) ProbeEnvironment(ctx context.Context) (Environment, error) {
	if err := p.rt.EnsureImage(ctx, probeClientImage); err != nil {
		return Environment{}, fmt.Errorf("ensuring probe image %s: %w", probeClientImage, err)
	}
	env := Environment{Image: probeClientImage, Env: map[string]string{}}
	_, env, err := p.RunCommands(ctx, env, [][]string{{"apk", "add", "--no-cache", "curl"}})
	if err != nil {
		return Environment{}, fmt.Errorf("installing probe tooling: %w", err)
	}
	return env, nil
}

// ProbeService validates the live service end to end: starts it, binds it
// into a probe environment under the configured alias, waits for readiness
// and issues one GET per path (root and health endpoints). Each request
// carries the fixed per-request timeout. All transient resources — service,
// binding network, probe containers — are discarded before returning, on
// failure paths too.
//
// Any failed request (non-2xx or connection failure) aborts with a
// ProbeFailedError; there is no partial success.
func (p *Pipeline) ProbeService(ctx context.Context, src SourceTree, version string) ([]ProbeResponse, error) {
	log := zap.S().Named("probe")

	handle, err := p.StartService(ctx, p.NewService(src, version))
	if err != nil {
		return nil, err
	}
	defer func() {
		if stopErr := handle.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			log.Warnw("failed to stop service", "error", stopErr)
		}
	}()

	binding, err := p.Bind(ctx, handle, p.cfg.Service.Alias)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := binding.Release(context.WithoutCancel(ctx)); relErr != nil {
			log.Warnw("failed to release binding", "error", relErr)
		}
	}()

	probeEnv, err := p.ProbeEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	probeEnv = binding.Attach(probeEnv)

	baseURL := fmt.Sprintf("http://%s:%d", binding.Alias, handle.Port)
	if err := p.awaitReady(ctx, probeEnv, baseURL+"/health"); err != nil {
		return nil, perrors.NewProbeFailedError(baseURL+"/health", err)
	}

	responses := make([]ProbeResponse, 0, 2)
	for _, path := range []string{"/", "/health"} {
		url := baseURL + path
		body, err := p.probeOnce(ctx, probeEnv, url)
		if err != nil {
			return nil, perrors.NewProbeFailedError(url, err)
		}
		log.Debugw("probe succeeded", "url", url)
		responses = append(responses, ProbeResponse{Path: path, Body: body})
	}
	return responses, nil
}

// probeOnce issues a single GET from inside the probe environment. curl
// --fail turns any non-2xx status into a nonzero exit; --max-time enforces
// the fixed per-request timeout.
func (p *Pipeline) probeOnce(ctx context.Context, env Environment, url string) (string, error) {
	timeout := fmt.Sprintf("%g", p.cfg.Service.ProbeTimeout.Seconds())
	out, _, err := p.RunCommands(ctx, env, [][]string{
		{"curl", "-sS", "--fail", "--max-time", timeout, url},
	})
	return out, err
}

// awaitReady polls the health endpoint until the service answers. A freshly
// started container needs a moment before uvicorn accepts connections.
func (p *Pipeline) awaitReady(ctx context.Context, env Environment, url string) error {
	operation := func() (string, error) {
		return p.probeOnce(ctx, env, url)
	}
	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(readinessBudget),
	)
	return err
}

// IntegrationTest runs the delegated e2e test target against a live service
// instance. The service is bound directly into the test environment and its
// base URL is injected through the API_BASE_URL variable; all discovery and
// assertion logic lives in the test target itself.
func (p *Pipeline) IntegrationTest(ctx context.Context, src SourceTree, version string) (string, error) {
	log := zap.S().Named("probe")

	handle, err := p.StartService(ctx, p.NewService(src, version))
	if err != nil {
		return "", err
	}
	defer func() {
		if stopErr := handle.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			log.Warnw("failed to stop service", "error", stopErr)
		}
	}()

	binding, err := p.Bind(ctx, handle, p.cfg.Service.Alias)
	if err != nil {
		return "", err
	}
	defer func() {
		if relErr := binding.Release(context.WithoutCancel(ctx)); relErr != nil {
			log.Warnw("failed to release binding", "error", relErr)
		}
	}()

	env, err := p.BuildEnvironment(ctx, src, version)
	if err != nil {
		return "", err
	}
	env = binding.Attach(env).
		WithEnv("API_BASE_URL", fmt.Sprintf("http://%s:%d", binding.Alias, handle.Port))

	return p.runTestsIn(ctx, env, TargetE2E)
}
