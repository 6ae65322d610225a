package glyphpoly

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glyphpoly/abi"
	"github.com/gogpu/glyphpoly/internal/native"
)

// gatedUnit holds every compile until gate is closed and reports the first
// one on started.
type gatedUnit struct {
	*native.Unit
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func (u *gatedUnit) Compile(ctx context.Context, off, n uint32, p abi.Params) (uint32, error) {
	u.once.Do(func() { close(u.started) })
	<-u.gate
	return u.Unit.Compile(ctx, off, n, p)
}

func TestPoolCompileAll(t *testing.T) {
	p, err := NewPool(3, nil)
	require.NoError(t, err)
	defer p.Close(context.Background())
	assert.Equal(t, 3, p.Size())

	var jobs []Job
	for i := range 20 {
		x := float32(i * 20)
		jobs = append(jobs, Job{
			Commands: append(square(x, 0, x+10, 10, false), square(x+3, 3, x+7, 7, true)...),
			Format:   FormatTrueType,
			PPC:      4,
			Eps:      0.1,
		})
	}

	results, err := p.CompileAll(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		require.Len(t, r.Shapes, 1, "job %d", i)
		assert.Equal(t, float32(i*20), r.Shapes[0].Fill[0].X, "job %d out of order", i)
		assert.Len(t, r.Shapes[0].Holes, 1)
	}
}

func TestPoolMatchesCompiler(t *testing.T) {
	cmds := append(circle(0, 0, 10, false), circle(0, 0, 6, true)...)

	c := NewCompiler()
	defer c.Close(context.Background())
	want, err := c.CompileResult(context.Background(), cmds, FormatTrueType, 6, 0.05)
	require.NoError(t, err)

	p, err := NewPool(2, nil)
	require.NoError(t, err)
	defer p.Close(context.Background())

	jobs := []Job{
		{Commands: cmds, Format: FormatTrueType, PPC: 6, Eps: 0.05},
		{Commands: cmds, Format: FormatTrueType, PPC: 6, Eps: 0.05},
	}
	got, err := p.CompileAll(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, want, got[0])
	assert.Equal(t, want, got[1])
}

func TestPoolJoinsErrors(t *testing.T) {
	p, err := NewPool(2, nil)
	require.NoError(t, err)
	defer p.Close(context.Background())

	jobs := []Job{
		{Commands: square(0, 0, 1, 1, false), Format: FormatTrueType, PPC: 4, Eps: 0.1},
		{Commands: []Command{MoveTo(0, 0), CubicTo(0, 1, 1, 1, 1, 0)}, Format: FormatTrueType, PPC: 4, Eps: 0.1},
		{Commands: square(0, 0, 1, 1, false), Format: FormatTrueType, PPC: 0, Eps: 0.1},
	}
	results, err := p.CompileAll(context.Background(), jobs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompileFailure)
	assert.Contains(t, err.Error(), "job 1")
	assert.Contains(t, err.Error(), "job 2")
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
}

func TestPoolFactoryError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := NewPool(3, func() (*Compiler, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return NewCompiler(), nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPoolClose(t *testing.T) {
	p, err := NewPool(0, nil)
	require.NoError(t, err)
	assert.Positive(t, p.Size())

	require.NoError(t, p.Close(context.Background()))
	require.NoError(t, p.Close(context.Background()))

	_, err = p.CompileAll(context.Background(), []Job{{Commands: square(0, 0, 1, 1, false)}})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolCloseDuringCompileAll(t *testing.T) {
	unit := &gatedUnit{
		Unit:    native.New(native.DefaultPages, native.DefaultMaxPages),
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
	p, err := NewPool(1, func() (*Compiler, error) {
		return NewCompiler(WithUnit(unit)), nil
	})
	require.NoError(t, err)

	// More jobs than the queue holds, so CompileAll is still enqueueing.
	jobs := make([]Job, 16)
	for i := range jobs {
		jobs[i] = Job{Commands: square(0, 0, 1, 1, false), Format: FormatTrueType, PPC: 4, Eps: 0.1}
	}

	type outcome struct {
		results []*Result
		err     error
	}
	compiled := make(chan outcome, 1)
	go func() {
		r, err := p.CompileAll(context.Background(), jobs)
		compiled <- outcome{r, err}
	}()
	<-unit.started

	closed := make(chan error, 1)
	go func() { closed <- p.Close(context.Background()) }()
	require.Eventually(t, func() bool { return !p.running.Load() }, 5*time.Second, time.Millisecond)
	close(unit.gate)

	select {
	case out := <-compiled:
		assert.ErrorIs(t, out.err, ErrClosed)
		require.Len(t, out.results, len(jobs))
		assert.NotNil(t, out.results[0], "running job finishes")
		for i := 1; i < len(jobs); i++ {
			assert.Nil(t, out.results[i], "job %d", i)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("CompileAll still blocked after Close")
	}

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not return")
	}

	_, err = p.CompileAll(context.Background(), jobs)
	assert.ErrorIs(t, err, ErrClosed)
}
