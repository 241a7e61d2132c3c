// Package async runs independent named computations over a bounded worker
// pool. Report assembly uses it to build every table of a view concurrently.
package async

import (
	"context"
	"sync"
)

// Task is one named unit of work.
type Task struct {
	Name    string
	Execute func() (any, error)
}

// Result carries a task's output keyed by its name.
type Result struct {
	Name string
	Data any
	Err  error
}

// Pool bounds how many tasks run at once. A Pool is stateless between calls
// and safe for concurrent use.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs all tasks and returns their results keyed by task name. If the
// context is cancelled mid-run, the results collected so far are returned;
// callers distinguish a missing entry from a failed one.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	pending := make(chan Task)
	done := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case task, ok := <-pending:
					if !ok {
						return
					}
					data, err := task.Execute()
					done <- Result{Name: task.Name, Data: data, Err: err}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(pending)
		for _, task := range tasks {
			select {
			case pending <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(map[string]Result, len(tasks))
	for i := 0; i < len(tasks); i++ {
		select {
		case r := <-done:
			results[r.Name] = r
		case <-ctx.Done():
			return results
		}
	}
	wg.Wait()
	return results
}
