package dwg

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Executable() (string, error)
	// Run starts name and waits for it. A process that ran and exited
	// non-zero reports its exit code with a nil error; err is only set when
	// the process could not be started or was killed.
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (exitCode int, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Executable() (string, error) {
	return os.Executable()
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

var defaultExec executor = &osExecutor{}
