package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	perrors "github.com/conveyor-ci/conveyor/pkg/errors"
)

// RunCommands executes the commands in sequence inside the environment. Each
// successful command's filesystem is committed and becomes the base of the
// next one, so installed dependencies persist for later commands. Returns the
// captured stdout of the final command along with the last layered
// environment.
//
// The first nonzero exit aborts the sequence with a CommandFailedError
// carrying the failing command and its combined output.
func (p *Pipeline) RunCommands(ctx context.Context, env Environment, commands [][]string) (string, Environment, error) {
	log := zap.S().Named("pipeline")

	current := env
	var lastStdout string
	for _, command := range commands {
		log.Debugw("running command", "command", command, "image", current.Image)

		res, err := p.rt.RunCommand(ctx, current.spec(command))
		if err != nil {
			return "", current, fmt.Errorf("running command %v: %w", command, err)
		}
		if res.ExitCode != 0 {
			return "", current, perrors.NewCommandFailedError(command, res.ExitCode, res.Combined)
		}

		lastStdout = res.Stdout
		if res.ImageRef != "" {
			p.trackLayer(res.ImageRef)
			current = current.withImage(res.ImageRef)
		}
	}
	return lastStdout, current, nil
}
