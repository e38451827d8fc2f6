package worker

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
)

// A small fixed-size worker pool running submitted tasks.

// PoolSizeFor computes the pool size once at startup from the expected
// concurrent user count: one worker slot per twenty users, floored at 10
// for small deployments and capped at 100 to bound database connection
// pressure.
func PoolSizeFor(expectedConcurrentUsers int) int {
	size := expectedConcurrentUsers / 20
	if size < 10 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return size
}

type Task func(ctx context.Context) error

type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	n    int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{jobs: make(chan Task, workers*4), quit: make(chan struct{}), n: workers}
}

// Size reports the number of workers.
func (p *Pool) Size() int { return p.n }

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						log.Printf("worker %d task error: %v", id, err)
					}
				}
			}
		}(i)
	}
}

func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		// drop when saturated; the claim loop re-polls shortly
		return errors.New("worker queue full")
	}
}
