package pipeline

import (
	"context"
	"fmt"
)

// Environment is an immutable execution environment value. Every With*
// modifier returns a layered copy; nothing mutates an Environment after
// creation, so environments can be shared freely between stages.
type Environment struct {
	Image       string
	WorkDir     string
	Env         map[string]string
	Source      SourceTree
	CacheVolume string
	CachePath   string
	Networks    map[string][]string
	Expose      []uint16
}

// BuildEnvironment produces the base execution environment for a runtime
// version: the matching uv toolchain image, the shared dependency cache
// mounted at its fixed path, the source tree at the working directory and
// system-wide package resolution enabled. Deterministic given identical
// inputs; the only side effect is acquiring the shared cache volume.
func (p *Pipeline) BuildEnvironment(ctx context.Context, src SourceTree, version string) (Environment, error) {
	if version == "" {
		version = p.cfg.Pipeline.PythonVersion
	}
	image := p.cfg.Pipeline.BaseImageRef(version)

	if err := p.rt.EnsureImage(ctx, image); err != nil {
		return Environment{}, fmt.Errorf("ensuring base image %s: %w", image, err)
	}
	if err := p.rt.EnsureVolume(ctx, p.cfg.Engine.CacheName); err != nil {
		return Environment{}, fmt.Errorf("ensuring dependency cache %s: %w", p.cfg.Engine.CacheName, err)
	}

	return Environment{
		Image:       image,
		WorkDir:     p.cfg.Pipeline.WorkDir,
		Env:         map[string]string{"UV_SYSTEM_PYTHON": "1"},
		Source:      src,
		CacheVolume: p.cfg.Engine.CacheName,
		CachePath:   p.cfg.Pipeline.CachePath,
	}, nil
}

func (e Environment) clone() Environment {
	env := make(map[string]string, len(e.Env))
	for k, v := range e.Env {
		env[k] = v
	}
	networks := make(map[string][]string, len(e.Networks))
	for k, v := range e.Networks {
		networks[k] = append([]string(nil), v...)
	}
	e.Env = env
	e.Networks = networks
	e.Expose = append([]uint16(nil), e.Expose...)
	return e
}

// WithEnv returns a copy of the environment with the variable set.
func (e Environment) WithEnv(key, value string) Environment {
	next := e.clone()
	next.Env[key] = value
	return next
}

// WithNetwork returns a copy of the environment attached to the network
// under the given aliases.
func (e Environment) WithNetwork(name string, aliases ...string) Environment {
	next := e.clone()
	next.Networks[name] = append([]string(nil), aliases...)
	return next
}

// WithExposedPort returns a copy of the environment declaring an exposed
// network port.
func (e Environment) WithExposedPort(port uint16) Environment {
	next := e.clone()
	next.Expose = append(next.Expose, port)
	return next
}

// withImage returns a copy of the environment rebased on a committed layer.
func (e Environment) withImage(ref string) Environment {
	next := e.clone()
	next.Image = ref
	return next
}

// spec renders the environment plus a command into a container description.
func (e Environment) spec(command []string) ContainerSpec {
	return ContainerSpec{
		Image:       e.Image,
		Env:         e.Env,
		WorkDir:     e.WorkDir,
		SourceDir:   e.Source.Dir,
		CacheVolume: e.CacheVolume,
		CachePath:   e.CachePath,
		Networks:    e.Networks,
		Expose:      e.Expose,
		Command:     command,
	}
}
