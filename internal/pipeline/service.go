package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ServiceSpec is a deferred description of the application service. Nothing
// runs until StartService consumes it; construction is purely declarative.
type ServiceSpec struct {
	Source     SourceTree
	Version    string
	Port       uint16
	Entrypoint []string
}

// NewService describes the application under test as a service: the package
// installed in non-test mode, one exposed port, and the application's entry
// command. No container is created here.
func (p *Pipeline) NewService(src SourceTree, version string) ServiceSpec {
	return ServiceSpec{
		Source:     src,
		Version:    version,
		Port:       uint16(p.cfg.Service.Port),
		Entrypoint: append([]string(nil), p.cfg.Service.Entrypoint...),
	}
}

// ServiceHandle refers to a running, network-addressable service container.
// The handle is owned by whichever stage started it and must be stopped when
// that stage completes, on both success and failure paths. Stop is
// idempotent.
type ServiceHandle struct {
	ContainerID string
	Port        uint16

	p    *Pipeline
	once sync.Once
}

// StartService materializes a ServiceSpec: builds the environment, installs
// the package and spawns the entry command as a long-running container. The
// service is reachable only by containers explicitly bound to it; no host
// port is published.
func (p *Pipeline) StartService(ctx context.Context, spec ServiceSpec) (*ServiceHandle, error) {
	env, err := p.BuildEnvironment(ctx, spec.Source, spec.Version)
	if err != nil {
		return nil, err
	}
	_, env, err = p.RunCommands(ctx, env, [][]string{{"uv", "pip", "install", "-e", "."}})
	if err != nil {
		return nil, fmt.Errorf("installing service package: %w", err)
	}

	env = env.WithExposedPort(spec.Port)
	id, err := p.rt.StartContainer(ctx, env.spec(spec.Entrypoint))
	if err != nil {
		return nil, fmt.Errorf("starting service container: %w", err)
	}

	zap.S().Named("service").Infow("service started", "container", id, "port", spec.Port)
	return &ServiceHandle{ContainerID: id, Port: spec.Port, p: p}, nil
}

// Stop tears the service down. Safe to call multiple times and from deferred
// cleanup paths.
func (h *ServiceHandle) Stop(ctx context.Context) error {
	var err error
	h.once.Do(func() {
		err = h.p.rt.StopContainer(ctx, h.ContainerID)
	})
	return err
}
