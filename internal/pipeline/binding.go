package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Binding attaches a running service to a disposable network under a fixed
// alias. Only environments that join the binding's network can resolve the
// alias; everything else gets a name-resolution failure. Releasing the
// binding does not stop the service — service lifetime stays with its
// ServiceHandle.
type Binding struct {
	Alias   string
	Network string

	p *Pipeline
}

// Bind creates a fresh network for this orchestration call and connects the
// service container to it under the alias.
func (p *Pipeline) Bind(ctx context.Context, handle *ServiceHandle, alias string) (*Binding, error) {
	name := fmt.Sprintf("conveyor-net-%s", uuid.NewString()[:8])
	if err := p.rt.CreateNetwork(ctx, name); err != nil {
		return nil, fmt.Errorf("creating binding network %s: %w", name, err)
	}
	if err := p.rt.ConnectAlias(ctx, name, handle.ContainerID, []string{alias}); err != nil {
		// Best effort: don't leak the network on a failed connect.
		if rmErr := p.rt.RemoveNetwork(ctx, name); rmErr != nil {
			zap.S().Named("pipeline").Warnw("failed to remove binding network", "network", name, "error", rmErr)
		}
		return nil, fmt.Errorf("binding service %s as %q: %w", handle.ContainerID, alias, err)
	}
	return &Binding{Alias: alias, Network: name, p: p}, nil
}

// Attach returns a copy of the environment joined to the binding's network,
// making http://<alias>:<port>/ resolvable inside it.
func (b *Binding) Attach(env Environment) Environment {
	return env.WithNetwork(b.Network)
}

// Release removes the binding network, disconnecting any containers still
// attached. The bound service keeps running.
func (b *Binding) Release(ctx context.Context) error {
	return b.p.rt.RemoveNetwork(ctx, b.Network)
}
