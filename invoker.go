package serial

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// sttyPath is the fixed location of the stty binary. Package variable so
// tests can point it at a stand-in.
var sttyPath = "/bin/stty"

// Invoker runs the external line-discipline configuration utility.
// Implementations must spawn exactly one process per call and perform no
// retries.
type Invoker interface {
	// Run invokes the utility with the given arguments and returns its
	// stdout. Non-empty stderr is a failure of type *ExecError.
	Run(args []string) (string, error)
}

// sttyInvoker is the real Invoker backed by the stty binary.
type sttyInvoker struct {
	bin string
}

func newSttyInvoker() *sttyInvoker {
	bin, err := resolveSttyPath()
	if err != nil {
		bin = sttyPath
	}
	return &sttyInvoker{bin: bin}
}

// resolveSttyPath locates the stty binary: the fixed path when present,
// otherwise a PATH lookup. The invoker execs whatever this resolves to,
// so the availability probe and the actual invocations always agree.
func resolveSttyPath() (string, error) {
	if _, err := os.Stat(sttyPath); err == nil {
		return sttyPath, nil
	}
	return exec.LookPath("stty")
}

// IsSttyAvailable reports whether the stty binary can be located.
func IsSttyAvailable() bool {
	_, err := resolveSttyPath()
	return err == nil
}

// Run spawns stty and drains stdout and stderr concurrently before
// waiting for the process to exit. Draining both streams first avoids a
// pipe-buffer deadlock when the process writes more than the OS pipe
// buffer to either stream before exiting.
func (s *sttyInvoker) Run(args []string) (string, error) {
	cmd := exec.Command(s.bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", s.bin, err)
	}

	type drained struct {
		data []byte
		err  error
	}
	outCh := make(chan drained, 1)
	errCh := make(chan drained, 1)
	go func() {
		data, err := io.ReadAll(stdout)
		outCh <- drained{data, err}
	}()
	go func() {
		data, err := io.ReadAll(stderr)
		errCh <- drained{data, err}
	}()

	out := <-outCh
	serr := <-errCh

	// stty exits non-zero on bad tokens, but the stderr text is the
	// authoritative failure signal here, so the wait error is inspected
	// only after stderr.
	waitErr := cmd.Wait()

	if out.err != nil {
		return "", fmt.Errorf("reading stty stdout: %w", out.err)
	}
	if serr.err != nil {
		return "", fmt.Errorf("reading stty stderr: %w", serr.err)
	}

	if msg := strings.TrimSpace(string(serr.data)); msg != "" {
		return "", &ExecError{Args: args, Stderr: msg}
	}
	if waitErr != nil {
		return "", fmt.Errorf("stty %s: %w", strings.Join(args, " "), waitErr)
	}

	return string(out.data), nil
}
