package glyphpoly

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is one independent compile request for a Pool.
type Job struct {
	Commands []Command
	Format   Format
	PPC      int
	Eps      float32
}

// Pool compiles independent jobs in parallel.
//
// Each worker goroutine owns one Compiler and therefore one unit with its
// own memory, so no unit ever sees two calls at once.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	compilers []*Compiler

	// work is shared by all workers; each job runs on whichever worker is free.
	work chan func(*Compiler)

	// done signals workers to drain the queue and stop.
	done chan struct{}

	// mu is held shared while CompileAll enqueues and exclusively by Close,
	// so no job is queued after done is closed.
	mu sync.RWMutex

	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool creates a pool of n workers. If n is 0 or negative, GOMAXPROCS
// is used. newCompiler builds the compiler for each worker; nil means
// NewCompiler with no options.
func NewPool(n int, newCompiler func() (*Compiler, error)) (*Pool, error) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if newCompiler == nil {
		newCompiler = func() (*Compiler, error) { return NewCompiler(), nil }
	}

	p := &Pool{
		work: make(chan func(*Compiler), n*4),
		done: make(chan struct{}),
	}
	for range n {
		c, err := newCompiler()
		if err != nil {
			for _, made := range p.compilers {
				_ = made.Close(context.Background())
			}
			return nil, fmt.Errorf("glyphpoly: pool worker: %w", err)
		}
		p.compilers = append(p.compilers, c)
	}

	p.running.Store(true)
	p.wg.Add(n)
	for _, c := range p.compilers {
		go p.worker(c)
	}
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.compilers)
}

func (p *Pool) worker(c *Compiler) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			p.drain(c)
			return
		case fn := <-p.work:
			fn(c)
		}
	}
}

// drain runs whatever is left in the queue. Jobs queued before Close
// observe the pool as stopped and finish with ErrClosed.
func (p *Pool) drain(c *Compiler) {
	for {
		select {
		case fn := <-p.work:
			fn(c)
		default:
			return
		}
	}
}

// CompileAll compiles every job and returns the results in job order.
// If any job fails, the returned error joins every failure and the results
// of failed jobs are nil.
func (p *Pool) CompileAll(ctx context.Context, jobs []Job) ([]*Result, error) {
	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return nil, ErrClosed
	}

	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(jobs))

	for i, job := range jobs {
		fn := func(c *Compiler) {
			defer wg.Done()
			if !p.running.Load() {
				errs[i] = fmt.Errorf("job %d: %w", i, ErrClosed)
				return
			}
			r, err := c.CompileResult(ctx, job.Commands, job.Format, job.PPC, job.Eps)
			if err != nil {
				errs[i] = fmt.Errorf("job %d: %w", i, err)
				return
			}
			results[i] = r
		}
		select {
		case p.work <- fn:
		case <-ctx.Done():
			errs[i] = ctx.Err()
			wg.Done()
		}
	}
	p.mu.RUnlock()

	wg.Wait()
	return results, errors.Join(errs...)
}

// Close stops the workers and closes their compilers. Jobs already
// running finish normally; jobs still queued fail with ErrClosed, so
// concurrent CompileAll calls return instead of waiting on them.
func (p *Pool) Close(ctx context.Context) error {
	if !p.running.CompareAndSwap(true, false) {
		return nil
	}
	p.mu.Lock()
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()

	var errs []error
	for _, c := range p.compilers {
		errs = append(errs, c.Close(ctx))
	}
	return errors.Join(errs...)
}
