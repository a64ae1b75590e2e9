package workflow

import (
	"context"
	"errors"
	"slices"
	"time"
)

// Scheduler polls its tasks round-robin, one Poll per task per round.
// A Scheduler is itself a Task.
type Scheduler struct {
	tasks []Task
	errs  []error
}

// NewScheduler returns a scheduler over tasks. Tasks run concurrently in the
// cooperative sense: they interleave on the shared engine.
func NewScheduler(tasks ...Task) *Scheduler {
	return &Scheduler{tasks: slices.Clone(tasks)}
}

// Add appends a task to the round.
func (s *Scheduler) Add(t Task) { s.tasks = append(s.tasks, t) }

// Pending returns the number of unfinished tasks.
func (s *Scheduler) Pending() int { return len(s.tasks) }

// Poll runs one round. Finished tasks are removed; their errors are joined
// and returned once every task has finished.
func (s *Scheduler) Poll() (bool, error) {
	remaining := s.tasks[:0]
	for _, t := range s.tasks {
		done, err := t.Poll()
		if err != nil {
			s.errs = append(s.errs, err)
		}
		if !done {
			remaining = append(remaining, t)
		}
	}
	clear(s.tasks[len(remaining):])
	s.tasks = remaining

	if len(s.tasks) > 0 {
		return false, nil
	}

	return true, errors.Join(s.errs...)
}

// Run polls every interval until all tasks have finished or ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := s.Poll()
		if done {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
