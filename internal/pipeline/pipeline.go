package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/conveyor-ci/conveyor/internal/config"
)

// Pipeline composes the stages of the containerized test pipeline on top of a
// Runtime. It holds no per-invocation state beyond the set of committed layer
// images, which Close removes. All stages are safe for concurrent use; matrix
// branches share a single Pipeline.
type Pipeline struct {
	rt  Runtime
	cfg *config.Configuration

	mu     sync.Mutex
	layers []string
}

func New(rt Runtime, cfg *config.Configuration) *Pipeline {
	return &Pipeline{rt: rt, cfg: cfg}
}

func (p *Pipeline) trackLayer(ref string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.layers = append(p.layers, ref)
}

// Close removes the filesystem layers committed during this pipeline
// invocation. The dependency cache volume is persistent and is left alone.
func (p *Pipeline) Close(ctx context.Context) {
	p.mu.Lock()
	layers := p.layers
	p.layers = nil
	p.mu.Unlock()

	for _, ref := range layers {
		if err := p.rt.RemoveImage(ctx, ref); err != nil {
			zap.S().Named("pipeline").Warnw("failed to remove layer image", "image", ref, "error", err)
		}
	}
}
