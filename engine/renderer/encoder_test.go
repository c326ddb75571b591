package renderer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/mirage/engine/renderer/gl"
	"github.com/spaghettifunk/mirage/engine/renderer/gl/gltest"
)

func TestEncoderRecordsAndFinishResets(t *testing.T) {
	e := NewCommandEncoder()
	e.Record(func(ctx *gl.Context) {})
	e.Record(func(ctx *gl.Context) {})

	batch := e.Finish()
	assert.Equal(t, 2, batch.Len())
	assert.Equal(t, 0, e.Finish().Len(), "finish starts a fresh batch")
}

func TestInlineExecutorRunsInSubmissionOrder(t *testing.T) {
	ctx := gl.NewContext(gltest.NewDevice())
	x, err := NewExecutor(&ExecutorConfig{Context: ctx, Inline: true})
	require.NoError(t, err)
	defer x.Close()

	var order []int
	e := NewCommandEncoder()
	for i := 1; i <= 3; i++ {
		i := i
		e.Record(func(ctx *gl.Context) { order = append(order, i) })
	}
	x.Submit(e.Finish())
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestThreadedExecutorRunsAllBatches(t *testing.T) {
	ctx := gl.NewContext(gltest.NewDevice())
	bound := false
	x, err := NewExecutor(&ExecutorConfig{
		Context:     ctx,
		MakeCurrent: func() error { bound = true; return nil },
	})
	require.NoError(t, err)
	assert.True(t, bound, "context bound before the first command")

	var mu sync.Mutex
	var seen []int
	for i := 1; i <= 5; i++ {
		i := i
		e := NewCommandEncoder()
		e.Record(func(ctx *gl.Context) {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
		})
		x.Submit(e.Finish())
	}
	x.Close()

	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestExecutorRequiresContext(t *testing.T) {
	_, err := NewExecutor(&ExecutorConfig{})
	assert.Error(t, err)
	_, err = NewExecutor(nil)
	assert.Error(t, err)
}

func TestExecutorCommandsSeeTheExecutorContext(t *testing.T) {
	ctx := gl.NewContext(gltest.NewDevice())
	x, err := NewExecutor(&ExecutorConfig{Context: ctx, Inline: true})
	require.NoError(t, err)

	var got *gl.Context
	e := NewCommandEncoder()
	e.Record(func(c *gl.Context) { got = c })
	x.Submit(e.Finish())
	assert.Same(t, ctx, got)
}
