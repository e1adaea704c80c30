// Package engine implements the pipeline.Runtime interface on top of the
// Podman API bindings. One Engine wraps one connection to the Podman socket;
// all methods are safe for concurrent use by matrix branches.
package engine

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/containers/podman/v5/pkg/bindings"
	"github.com/containers/podman/v5/pkg/bindings/images"
	"github.com/containers/podman/v5/pkg/bindings/volumes"
	"github.com/containers/podman/v5/pkg/domain/entities"
	"go.uber.org/zap"
)

type Engine struct {
	// conn carries the Podman client; the bindings resolve it from the
	// context on every call.
	conn context.Context
}

// New connects to the Podman service at the given socket URI.
func New(ctx context.Context, socket string) (*Engine, error) {
	conn, err := bindings.NewConnection(ctx, socket)
	if err != nil {
		return nil, fmt.Errorf("connecting to podman socket %s: %w", socket, err)
	}
	return &Engine{conn: conn}, nil
}

// callCtx derives the context for one bindings call: the Podman client comes
// from the connection, cancellation and deadline from the caller. Cleanup
// paths keep using e.conn directly so a cancelled caller still releases its
// resources.
func (e *Engine) callCtx(ctx context.Context) context.Context {
	return mergedContext{Context: ctx, values: e.conn}
}

type mergedContext struct {
	context.Context
	values context.Context
}

func (c mergedContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}
	return c.values.Value(key)
}

// EnsureImage pulls the image unless it is already present. Pulls are retried
// with exponential backoff since registry hiccups are common on CI hosts.
func (e *Engine) EnsureImage(ctx context.Context, ref string) error {
	conn := e.callCtx(ctx)
	exists, err := images.Exists(conn, ref, nil)
	if err != nil {
		return fmt.Errorf("checking image %s: %w", ref, err)
	}
	if exists {
		return nil
	}

	zap.S().Named("engine").Infow("pulling image", "image", ref)
	pull := func() ([]string, error) {
		return images.Pull(conn, ref, nil)
	}
	if _, err := backoff.Retry(ctx, pull,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	); err != nil {
		return fmt.Errorf("pulling image %s: %w", ref, err)
	}
	return nil
}

// EnsureVolume creates the named volume if it does not exist. Creation races
// between concurrent matrix branches are benign: the loser re-checks.
func (e *Engine) EnsureVolume(ctx context.Context, name string) error {
	conn := e.callCtx(ctx)
	if _, err := volumes.Inspect(conn, name, nil); err == nil {
		return nil
	}
	if _, err := volumes.Create(conn, entities.VolumeCreateOptions{Name: name}, nil); err != nil {
		if _, inspectErr := volumes.Inspect(conn, name, nil); inspectErr == nil {
			return nil
		}
		return fmt.Errorf("creating volume %s: %w", name, err)
	}
	return nil
}

// RemoveImage deletes a committed layer image.
func (e *Engine) RemoveImage(ctx context.Context, ref string) error {
	opts := new(images.RemoveOptions).WithForce(true)
	if _, errs := images.Remove(e.callCtx(ctx), []string{ref}, opts); len(errs) > 0 {
		return fmt.Errorf("removing image %s: %w", ref, errs[0])
	}
	return nil
}
