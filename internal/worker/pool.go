package worker

import (
	"context"
	"sort"
	"sync"
)

// Job is a unit of work run by a Pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces
type Result interface {
	GetError() error
}

// indexed pairs a job or result with its submission order
type indexed[T any] struct {
	seq int
	val T
}

// Pool runs jobs on a fixed number of goroutines. Results are drained as
// they complete, so any number of jobs may be submitted before Wait, and
// come back in submission order. Every pool must end with Wait or Shutdown.
type Pool struct {
	workers int
	queue   chan indexed[Job]
	results chan indexed[Result]
	drained chan []indexed[Result]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.Mutex
	next   int
	closed bool

	finishOnce sync.Once
	final      []Result
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers: workers,
		queue:   make(chan indexed[Job], workers*2),
		results: make(chan indexed[Result], workers),
		drained: make(chan []indexed[Result], 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	go p.drain()
	return p
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok || p.ctx.Err() != nil {
				return
			}
			p.results <- indexed[Result]{seq: job.seq, val: job.val.Execute(p.ctx)}
		}
	}
}

func (p *Pool) drain() {
	var got []indexed[Result]
	for res := range p.results {
		got = append(got, res)
	}
	p.drained <- got
}

// Submit queues a job. It returns false once the pool is stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- indexed[Job]{seq: p.next, val: job}:
		p.next++
		return true
	}
}

// Wait runs the queued jobs to completion and returns their results in
// submission order. Jobs dropped by a cancellation have no result.
func (p *Pool) Wait() []Result {
	return p.finish()
}

// Shutdown stops the workers without running queued jobs
func (p *Pool) Shutdown() {
	p.cancel()
	p.finish()
}

func (p *Pool) finish() []Result {
	p.finishOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		p.wg.Wait()
		close(p.results)
		got := <-p.drained
		p.cancel()

		sort.Slice(got, func(i, j int) bool { return got[i].seq < got[j].seq })
		p.final = make([]Result, len(got))
		for i, res := range got {
			p.final[i] = res.val
		}
	})
	return p.final
}
