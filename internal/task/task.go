// Package task supervises the background goroutines of a session or a
// stream transport: every goroutine is named, panic-protected, stopped
// through a shared context and waited for on shutdown.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-atcmd/logger"
)

// ErrStopped is returned when a task is started on a stopped Manager.
var ErrStopped = errors.New("task: manager already stopped")

// startTimeout bounds how long Start waits for the goroutine to come up.
const startTimeout = 5 * time.Second

// Func is one iteration of a looping task. Returning false ends the loop.
type Func func() bool

// CleanupFunc runs once when a task's goroutine exits for any reason.
type CleanupFunc func()

// Manager starts and tracks goroutines.
//
//	mgr := task.NewManager(ctx, logger.GetLogger())
//	_ = mgr.Start("reader", func() bool {
//	    // ... one iteration ...
//	    return true
//	})
//	mgr.Stop()
//	mgr.Wait()
//
// After Wait returns the Manager may be reused; it derives a fresh context
// from the parent.
type Manager struct {
	pctx   context.Context
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
	mu     sync.RWMutex // protects ctx and cancel
	taskMu sync.RWMutex // blocks new tasks during Wait
}

// NewManager creates a Manager whose tasks stop when ctx is done.
func NewManager(ctx context.Context, l logger.Logger) *Manager {
	if l == nil {
		l = logger.GetLogger()
	}
	mgr := &Manager{pctx: ctx, logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the context shared by the running tasks.
func (mgr *Manager) Context() context.Context {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	return mgr.ctx
}

// Start runs fn in a loop on a new goroutine until it returns false or the
// Manager is stopped.
func (mgr *Manager) Start(name string, fn Func) error {
	return mgr.StartWithCleanup(name, fn, nil)
}

// StartWithCleanup is Start with a cleanup function that runs when the
// goroutine exits.
func (mgr *Manager) StartWithCleanup(name string, fn Func, cleanup CleanupFunc) error {
	mgr.logger.Debug("start task", "name", name)

	return mgr.launch(name, func(ctx context.Context) {
		if cleanup != nil {
			defer cleanup()
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if !mgr.callWithRecover(name, fn) {
				return
			}
		}
	})
}

// Go runs body once on a new goroutine. body must return when ctx is done.
func (mgr *Manager) Go(name string, body func(ctx context.Context)) error {
	mgr.logger.Debug("start task", "name", name)

	return mgr.launch(name, func(ctx context.Context) {
		mgr.callWithRecover(name, func() bool {
			body(ctx)
			return false
		})
	})
}

// Stop signals every running task to exit.
func (mgr *Manager) Stop() {
	mgr.mu.Lock()
	mgr.cancel()
	mgr.mu.Unlock()
}

// Wait blocks until every task has exited, then re-arms the Manager.
func (mgr *Manager) Wait() {
	mgr.taskMu.Lock()
	defer mgr.taskMu.Unlock()

	mgr.wg.Wait()

	mgr.mu.Lock()
	mgr.ctx, mgr.cancel = context.WithCancel(mgr.pctx)
	mgr.mu.Unlock()
}

// Count returns the number of running tasks.
func (mgr *Manager) Count() int {
	return int(mgr.count.Load())
}

func (mgr *Manager) callWithRecover(name string, fn Func) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task", "name", name, "panic", r)
			cont = false
		}
	}()

	return fn()
}

func (mgr *Manager) launch(name string, body func(ctx context.Context)) error {
	ctx := mgr.Context()
	if ctx.Err() != nil {
		return ErrStopped
	}

	mgr.taskMu.RLock()
	defer mgr.taskMu.RUnlock()

	started := make(chan struct{})
	mgr.wg.Add(1)
	mgr.count.Add(1)

	go func() {
		defer func() {
			mgr.count.Add(-1)
			mgr.wg.Done()
			mgr.logger.Debug("task terminated", "name", name, "task_count", mgr.Count())
		}()

		close(started)
		body(ctx)
	}()

	select {
	case <-started:
		return nil
	case <-time.After(startTimeout):
		return fmt.Errorf("task: timeout waiting for %s to start", name)
	}
}
