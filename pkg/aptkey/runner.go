package aptkey

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
)

// Command is a single invocation of an external tool.
type Command struct {
	Args []string
	// Env holds KEY=VALUE overrides, applied on top of the process environment for this call only.
	Env   []string
	Stdin []byte
}

func (c Command) String() string {
	return fmt.Sprintf("%v", c.Args)
}

// Runner executes commands, returning stdout and stderr combined.
// A non-nil error means the command could not run or exited non-zero; the output is returned either way.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	if len(c.Env) > 0 {
		cmd.Env = append(slices.Clone(os.Environ()), c.Env...)
	}
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	return cmd.CombinedOutput()
}
