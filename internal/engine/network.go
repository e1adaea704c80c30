package engine

import (
	"context"
	"fmt"

	"github.com/containers/podman/v5/pkg/bindings/network"
	nettypes "go.podman.io/common/libnetwork/types"
)

// CreateNetwork creates an isolated bridge network for one orchestration
// call.
func (e *Engine) CreateNetwork(ctx context.Context, name string) error {
	if _, err := network.Create(e.callCtx(ctx), &nettypes.Network{Name: name}); err != nil {
		return fmt.Errorf("creating network %s: %w", name, err)
	}
	return nil
}

// RemoveNetwork force-removes the network, disconnecting any containers
// still attached to it.
func (e *Engine) RemoveNetwork(ctx context.Context, name string) error {
	opts := new(network.RemoveOptions).WithForce(true)
	if _, err := network.Remove(e.callCtx(ctx), name, opts); err != nil {
		return fmt.Errorf("removing network %s: %w", name, err)
	}
	return nil
}

// ConnectAlias attaches a running container to the network under the given
// aliases, making it resolvable by those names inside the network only.
func (e *Engine) ConnectAlias(ctx context.Context, networkName, containerID string, aliases []string) error {
	opts := nettypes.PerNetworkOptions{Aliases: aliases}
	if err := network.Connect(e.callCtx(ctx), networkName, containerID, &opts); err != nil {
		return fmt.Errorf("connecting %s to network %s: %w", containerID, networkName, err)
	}
	return nil
}
