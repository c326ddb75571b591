package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
)

// Command is one recorded unit of GPU work. Commands close over pre-extracted
// frame data only; they must never touch host scene state, since they run after
// extraction has moved on.
type Command func(ctx *gl.Context)

// Batch is one frame's worth of recorded commands, handed to the executor
// atomically. Once submitted it runs to completion; there is no mid-frame abort.
type Batch struct {
	commands []Command
}

// Len returns the number of recorded commands.
func (b Batch) Len() int {
	return len(b.commands)
}

// CommandEncoder records commands during extraction. Not safe for concurrent
// recording; each extraction goroutine owns its own encoder and batches are
// merged by submission order.
type CommandEncoder struct {
	commands []Command
}

func NewCommandEncoder() *CommandEncoder {
	return &CommandEncoder{
		commands: make([]Command, 0, 256),
	}
}

// Record appends a command to the open batch.
func (e *CommandEncoder) Record(cmd Command) {
	e.commands = append(e.commands, cmd)
}

// Finish closes the open batch and resets the encoder for the next frame.
func (e *CommandEncoder) Finish() Batch {
	b := Batch{commands: e.commands}
	e.commands = make([]Command, 0, cap(e.commands))
	return b
}

// ExecutorConfig configures the command executor.
type ExecutorConfig struct {
	Context *gl.Context
	// MakeCurrent binds the host's GL context to the executor thread. Called
	// once on the executor goroutine before any command runs. Nil when the
	// context is already current (inline mode, or single-threaded hosts).
	MakeCurrent func() error
	// Inline runs every submitted batch synchronously on the caller. Used on
	// single-threaded targets and in tests.
	Inline bool
}

// Executor replays command batches against the one live GL context. It is the
// sole mutator of the GPU caches; everything GPU-side funnels through here.
//
// In threaded mode batches travel through a capacity-1 channel: Submit blocks
// while a previous batch is still queued, which paces the producer to the GPU
// frame rate.
type Executor struct {
	ctx     *gl.Context
	inline  bool
	batches chan Batch
	wg      sync.WaitGroup

	closeOnce sync.Once
}

func NewExecutor(config *ExecutorConfig) (*Executor, error) {
	if config == nil || config.Context == nil {
		return nil, fmt.Errorf("executor requires a context")
	}
	x := &Executor{
		ctx:    config.Context,
		inline: config.Inline,
	}
	if x.inline {
		if config.MakeCurrent != nil {
			if err := config.MakeCurrent(); err != nil {
				return nil, fmt.Errorf("failed to bind context: %w", err)
			}
		}
		return x, nil
	}

	x.batches = make(chan Batch, 1)
	bound := make(chan error)
	x.wg.Add(1)
	go func() {
		defer x.wg.Done()
		// The GL context is thread-affine. Pin the goroutine for its lifetime.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if config.MakeCurrent != nil {
			if err := config.MakeCurrent(); err != nil {
				bound <- err
				return
			}
		}
		bound <- nil
		for batch := range x.batches {
			x.run(batch)
		}
	}()
	if err := <-bound; err != nil {
		return nil, fmt.Errorf("failed to bind context on executor thread: %w", err)
	}
	return x, nil
}

func (x *Executor) run(batch Batch) {
	for _, cmd := range batch.commands {
		cmd(x.ctx)
	}
}

// Submit hands a batch to the executor. In threaded mode this blocks while the
// previous batch is still pending, providing frame-pacing backpressure.
func (x *Executor) Submit(batch Batch) {
	if x.inline {
		x.run(batch)
		return
	}
	x.batches <- batch
}

// Close drains pending batches and stops the executor thread. Inline executors
// have nothing to stop.
func (x *Executor) Close() {
	if x.inline {
		return
	}
	x.closeOnce.Do(func() {
		close(x.batches)
		x.wg.Wait()
		core.LogDebug("command executor stopped")
	})
}
