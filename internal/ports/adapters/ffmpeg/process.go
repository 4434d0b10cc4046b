package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/forPelevin/framegrab/internal/domain/invocation"
	"github.com/forPelevin/framegrab/internal/ports"
	"github.com/forPelevin/framegrab/internal/types"
)

const maxLineBytes = 1 << 20

// State is the lifecycle position of a Process.
type State int

const (
	StateBuilt State = iota
	StateSpawned
	StateStreaming
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSpawned:
		return "spawned"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Process supervises one ffmpeg run: Built -> Spawned -> Streaming ->
// Terminated. It is not restartable.
type Process struct {
	bin        string
	args       []string
	hideWindow bool
	classifier ports.LineClassifier

	mu      sync.Mutex
	state   State
	ctx     context.Context
	cmd     *exec.Cmd
	out     *os.File
	exit    types.ExitStatus
	waitErr error

	consumed atomic.Bool
	aborted  atomic.Bool

	errMu     sync.Mutex
	streamErr error
}

func newProcess(bin string, preamble []string, inv invocation.Invocation, c ports.LineClassifier) *Process {
	args := append(append([]string(nil), preamble...), inv.Args()...)
	return &Process{
		bin:        bin,
		args:       args,
		hideWindow: inv.HideWindow,
		classifier: c,
		state:      StateBuilt,
	}
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Spawn starts the child with stdout and stderr sharing one pipe. A failure
// leaves the process Terminated and is returned as *types.SpawnError.
func (p *Process) Spawn(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateBuilt {
		return fmt.Errorf("spawn: process is %s", p.state)
	}

	r, w, err := os.Pipe()
	if err != nil {
		p.state = StateTerminated
		return &types.SpawnError{Bin: p.bin, Err: fmt.Errorf("create output pipe: %w", err)}
	}

	cmd := exec.CommandContext(ctx, p.bin, p.args...)
	cmd.Stdout = w
	cmd.Stderr = w
	applyProcAttr(cmd, p.hideWindow)

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		p.state = StateTerminated
		return &types.SpawnError{Bin: p.bin, Err: err}
	}
	// The child holds its own copy of the write end; ours must go so the
	// reader sees EOF when the child exits.
	_ = w.Close()

	p.ctx = ctx
	p.cmd = cmd
	p.out = r
	p.state = StateSpawned
	return nil
}

// Events attaches to the child's output. The returned sequence can be ranged
// over once; it ends when the child closes its output.
func (p *Process) Events() (iter.Seq[types.EventRecord], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateSpawned {
		return nil, fmt.Errorf("attach event stream: process is %s", p.state)
	}
	p.state = StateStreaming
	return p.stream, nil
}

func (p *Process) stream(yield func(types.EventRecord) bool) {
	if !p.consumed.CompareAndSwap(false, true) {
		return
	}
	sc := bufio.NewScanner(p.out)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	sc.Split(scanLinesOrCR)
	for sc.Scan() {
		ev, ok := p.classifier.Classify(sc.Text())
		if !ok {
			continue
		}
		if !yield(ev) {
			p.abort()
			return
		}
	}
	if err := sc.Err(); err != nil && !p.aborted.Load() {
		p.errMu.Lock()
		p.streamErr = err
		p.errMu.Unlock()
		// The child keeps writing after the scanner gives up; drain so it
		// can run to exit and Wait can reap it.
		_, _ = io.Copy(io.Discard, p.out)
	}
}

// Wait reaps the child and returns its exit status. Output that was never
// consumed is discarded first so the child cannot block on a full pipe. A
// read failure during streaming is returned as *types.StreamError.
func (p *Process) Wait() (types.ExitStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateBuilt:
		return types.ExitStatus{}, errors.New("wait: process was never spawned")
	case StateTerminated:
		if p.cmd == nil {
			return types.ExitStatus{}, errors.New("wait: process was never spawned")
		}
		return p.exit, p.waitErr
	}

	if !p.consumed.Load() {
		p.consumed.Store(true)
		_, _ = io.Copy(io.Discard, p.out)
	}

	err := p.cmd.Wait()
	_ = p.out.Close()
	state := p.cmd.ProcessState
	clean := state != nil && state.Success()
	p.exit = exitStatus(state)
	p.state = StateTerminated

	p.errMu.Lock()
	streamErr := p.streamErr
	p.errMu.Unlock()

	switch {
	case p.aborted.Load():
		p.waitErr = nil
	case !clean && p.ctx != nil && p.ctx.Err() != nil:
		p.waitErr = fmt.Errorf("ffmpeg: %w", p.ctx.Err())
	case streamErr != nil:
		p.waitErr = &types.StreamError{Err: streamErr}
	case err != nil && !clean && !isExitError(err):
		p.waitErr = &types.StreamError{Err: err}
	}
	return p.exit, p.waitErr
}

// Close kills a running child and releases its pipe. It is safe to call in
// any state and more than once.
func (p *Process) Close() error {
	p.mu.Lock()
	switch p.state {
	case StateBuilt:
		p.state = StateTerminated
		p.mu.Unlock()
		return nil
	case StateTerminated:
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	p.abort()
	_, _ = p.Wait()
	return nil
}

func (p *Process) abort() {
	if !p.aborted.CompareAndSwap(false, true) {
		return
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// exitStatus reports -1 when the child was killed by a signal or never
// reaped.
func exitStatus(state *os.ProcessState) types.ExitStatus {
	if state == nil {
		return types.ExitStatus{Code: -1}
	}
	return types.ExitStatus{Code: state.ExitCode()}
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// scanLinesOrCR splits on '\n' or '\r'. ffmpeg redraws its stats line with a
// bare carriage return.
func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
