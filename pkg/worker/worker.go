package worker

import (
	"errors"
	"sync"

	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
)

type Handler = func(workerIndex int, job interface{})

// Pool
// is a fixed-size goroutine pool over a shared job channel. A pool is
// scoped to one fan-out: Start it, Enqueue the jobs, then Stop to
// drain the channel and wait for the workers to finish.
type Pool struct {
	jobs    chan interface{}
	workers int
	do      Handler
	waiter  *sync.WaitGroup
}

func NewPool(bufferSize, numberOfWorkers int) *Pool {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &Pool{
		jobs:    make(chan interface{}, bufferSize),
		workers: numberOfWorkers,
		waiter:  &sync.WaitGroup{},
	}
}

func (p *Pool) SetHandler(h Handler) {
	p.do = h
}

func (p *Pool) GetUnreadCount() int64 {
	return int64(len(p.jobs))
}

// Start
// starts off the workers as many as defined by the pool size. It
// returns immediately; the workers keep pulling jobs until Stop.
func (p *Pool) Start() error {
	if p.do == nil {
		return errors.New("worker: handler is not set")
	}
	p.waiter.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(index int) {
			defer p.waiter.Done()
			for job := range p.jobs {
				p.run(index, job)
			}
		}(i)
	}
	return nil
}

// run shields the pool from a panicking handler so one bad job cannot
// take a worker down.
func (p *Pool) run(index int, job interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker: handler panicked", "worker", index, "panic", r)
		}
	}()
	p.do(index, job)
}

// Enqueue
// publishes a job onto the channel. Blocks when the buffer is full.
func (p *Pool) Enqueue(job interface{}) {
	p.jobs <- job
}

// Stop closes the job channel and blocks until every queued job has
// been handled. The pool cannot be reused afterwards.
func (p *Pool) Stop() {
	close(p.jobs)
	p.waiter.Wait()
}
