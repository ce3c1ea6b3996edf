// Package engine is the embedded host build engine: an in-memory task
// registry plus a scheduler that runs tasks in dependency order with
// bounded parallelism. The engine knows nothing about docker; execution is
// delegated to an injected Executor.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/dockwright/src/taskgraph"
)

// Executor runs a single task.
type Executor interface {
	Execute(ctx context.Context, task taskgraph.Task) error
}

// TaskResult captures the outcome of one task.
type TaskResult struct {
	Name     string
	Status   string // "success", "failed", "skipped"
	Duration time.Duration
	Error    error
}

// Result captures the outcome of a full run.
type Result struct {
	Tasks    []TaskResult
	Duration time.Duration
}

// Failed reports whether any task failed.
func (r *Result) Failed() bool {
	for _, t := range r.Tasks {
		if t.Status == "failed" {
			return true
		}
	}
	return false
}

// Engine is an in-memory task registry and scheduler. It implements
// taskgraph.Registry.
type Engine struct {
	exec    Executor
	workers int64

	mu    sync.Mutex
	tasks map[string]taskgraph.Task
	order []string // registration order
}

// New creates an engine. workers bounds how many tasks run concurrently.
func New(exec Executor, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		exec:    exec,
		workers: int64(workers),
		tasks:   map[string]taskgraph.Task{},
	}
}

// Register adds a task. Registering a second task under the same name is
// an error.
func (e *Engine) Register(task taskgraph.Task) error {
	if task.Name == "" {
		return fmt.Errorf("engine: task name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.tasks[task.Name]; exists {
		return fmt.Errorf("engine: task %q already registered", task.Name)
	}
	e.tasks[task.Name] = task
	e.order = append(e.order, task.Name)
	return nil
}

// Tasks returns all registered tasks in registration order.
func (e *Engine) Tasks() []taskgraph.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]taskgraph.Task, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.tasks[name])
	}
	return out
}

// Lookup returns a registered task by name.
func (e *Engine) Lookup(name string) (taskgraph.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tasks[name]
	return t, ok
}

// Validate checks the build graph: every dependency must name a registered
// task and the graph must be acyclic.
func (e *Engine) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range e.order {
		for _, dep := range e.tasks[name].DependsOn {
			if _, ok := e.tasks[dep]; !ok {
				return fmt.Errorf("engine: task %q depends on unknown task %q", name, dep)
			}
		}
	}

	if cycle := e.findCycle(); len(cycle) > 0 {
		return fmt.Errorf("engine: dependency cycle: %v", cycle)
	}
	return nil
}

// Resolve returns the transitive closure of the targets in a valid
// execution order (dependencies first).
func (e *Engine) Resolve(targets ...string) ([]string, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	needed := map[string]bool{}
	var visit func(name string) error
	visit = func(name string) error {
		if needed[name] {
			return nil
		}
		task, ok := e.tasks[name]
		if !ok {
			return fmt.Errorf("engine: unknown task %q", name)
		}
		needed[name] = true
		for _, dep := range task.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, t := range targets {
		if err := visit(t); err != nil {
			return nil, err
		}
	}

	// Kahn over the needed subgraph, registration order as tie-breaker.
	indeg := map[string]int{}
	for name := range needed {
		for _, dep := range e.tasks[name].DependsOn {
			if needed[dep] {
				indeg[name]++
			}
		}
	}

	var ready, ordered []string
	for _, name := range e.order {
		if needed[name] && indeg[name] == 0 {
			ready = append(ready, name)
		}
	}
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, name)
		for _, next := range e.order {
			if !needed[next] {
				continue
			}
			for _, dep := range e.tasks[next].DependsOn {
				if dep == name {
					indeg[next]--
					if indeg[next] == 0 {
						ready = append(ready, next)
					}
				}
			}
		}
	}
	return ordered, nil
}

// Run executes the targets and everything they depend on. Independent
// tasks run concurrently up to the worker limit; a failed task marks its
// dependents skipped.
func (e *Engine) Run(ctx context.Context, targets ...string) (*Result, error) {
	start := time.Now()

	ordered, err := e.Resolve(targets...)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		ch  chan struct{}
		err error
	}
	outcomes := make(map[string]*outcome, len(ordered))
	for _, name := range ordered {
		outcomes[name] = &outcome{ch: make(chan struct{})}
	}

	var resMu sync.Mutex
	results := make(map[string]TaskResult, len(ordered))

	sem := semaphore.NewWeighted(e.workers)
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range ordered {
		task, _ := e.Lookup(name)
		out := outcomes[name]

		g.Go(func() error {
			defer close(out.ch)

			// Wait for dependencies.
			for _, dep := range task.DependsOn {
				depOut := outcomes[dep]
				select {
				case <-depOut.ch:
				case <-gctx.Done():
					out.err = gctx.Err()
					return nil
				}
				if depOut.err != nil {
					out.err = fmt.Errorf("dependency %q failed", dep)
					resMu.Lock()
					results[name] = TaskResult{Name: name, Status: "skipped", Error: out.err}
					resMu.Unlock()
					return nil
				}
			}

			if err := sem.Acquire(gctx, 1); err != nil {
				out.err = err
				return nil
			}
			defer sem.Release(1)

			taskStart := time.Now()
			err := e.exec.Execute(gctx, task)
			elapsed := time.Since(taskStart)

			resMu.Lock()
			if err != nil {
				results[name] = TaskResult{Name: name, Status: "failed", Duration: elapsed, Error: err}
			} else {
				results[name] = TaskResult{Name: name, Status: "success", Duration: elapsed}
			}
			resMu.Unlock()

			if err != nil {
				out.err = err
				return fmt.Errorf("task %s: %w", name, err)
			}
			return nil
		})
	}

	runErr := g.Wait()

	// Every resolved task gets a row. Tasks that never executed (waiting
	// on a failed dependency or on the semaphore when the run was
	// cancelled) are reported as skipped.
	result := &Result{Duration: time.Since(start)}
	for _, name := range ordered {
		r, ok := results[name]
		if !ok {
			r = TaskResult{Name: name, Status: "skipped", Error: outcomes[name].err}
		}
		result.Tasks = append(result.Tasks, r)
	}

	return result, runErr
}

// findCycle returns the names on a dependency cycle, or nil.
// Caller holds e.mu.
func (e *Engine) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := map[string]int{}
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = gray
		stack = append(stack, name)
		for _, dep := range e.tasks[name].DependsOn {
			if _, ok := e.tasks[dep]; !ok {
				continue
			}
			switch state[dep] {
			case gray:
				for i, n := range stack {
					if n == dep {
						cycle = append([]string{}, stack[i:]...)
						return true
					}
				}
				cycle = append([]string{}, dep)
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = black
		return false
	}

	for _, name := range e.order {
		if state[name] == white && visit(name) {
			return cycle
		}
	}
	return nil
}
