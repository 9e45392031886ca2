package jobrunner

import (
	"context"

	"github.com/spounge-ai/postgresql-connector/internal/domain"
)

// RunnerFunc adapts a function to domain.JobRunner.
type RunnerFunc func(ctx context.Context, args []string) error

func (f RunnerFunc) Run(ctx context.Context, args []string) error {
	return f(ctx, args)
}

var _ domain.JobRunner = RunnerFunc(nil)

// RedactArgs returns a copy of args with the value following any password
// flag masked, for logging.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--postgresql-pass" {
			out[i+1] = "***"
			i++
		}
	}
	return out
}
