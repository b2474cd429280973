package tasks

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/dream/engine/core"
)

type TaskState int32

const (
	TaskStateConstructed TaskState = iota
	TaskStateQueued
	TaskStateActive
	TaskStateCompleted
	TaskStateFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskStateConstructed:
		return "constructed"
	case TaskStateQueued:
		return "queued"
	case TaskStateActive:
		return "active"
	case TaskStateCompleted:
		return "completed"
	case TaskStateFailed:
		return "failed"
	}
	return fmt.Sprintf("TaskState(%d)", int32(s))
}

func (s TaskState) IsTerminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed
}

// validTransition allows only Constructed -> Queued -> Active -> Completed|Failed.
func validTransition(from, to TaskState) bool {
	switch from {
	case TaskStateConstructed:
		return to == TaskStateQueued
	case TaskStateQueued:
		return to == TaskStateActive
	case TaskStateActive:
		return to == TaskStateCompleted || to == TaskStateFailed
	}
	return false
}

// TaskFunc does the work of a task and reports success.
type TaskFunc func() bool

/** Definition for completion of a task. Not called for abandoned tasks. */
type TaskCallback func(t *Task)

var nextTaskID atomic.Uint64

/**
 * @brief A unit of deferred work with a monotonic lifecycle. The state is
 * published atomically so a single consumer can poll it from another
 * goroutine. Failed is terminal, tasks are never retried.
 */
type Task struct {
	id   uint64
	name string
	fn   TaskFunc

	state     atomic.Int32
	abandoned atomic.Bool
	deferrals atomic.Int32

	mu           sync.Mutex
	dependencies []*Task
	onComplete   TaskCallback

	done     chan struct{}
	doneOnce sync.Once
}

func NewTask(name string, fn TaskFunc) *Task {
	return &Task{
		id:   nextTaskID.Add(1),
		name: name,
		fn:   fn,
		done: make(chan struct{}),
	}
}

func (t *Task) ID() uint64 {
	return t.id
}

func (t *Task) Name() string {
	return t.name
}

func (t *Task) State() TaskState {
	return TaskState(t.state.Load())
}

func (t *Task) IsTerminal() bool {
	return t.State().IsTerminal()
}

// SetState moves the task forward. Backward or skipping transitions return
// ErrInvalidTaskTransition and leave the state untouched.
func (t *Task) SetState(s TaskState) error {
	for {
		cur := t.State()
		if !validTransition(cur, s) {
			return fmt.Errorf("task %d %q %s -> %s: %w", t.id, t.name, cur, s, core.ErrInvalidTaskTransition)
		}
		if t.state.CompareAndSwap(int32(cur), int32(s)) {
			if s.IsTerminal() {
				t.doneOnce.Do(func() { close(t.done) })
			}
			return nil
		}
	}
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Abandon turns the completion callback into a no-op. A task that has not
// started yet fails without running.
func (t *Task) Abandon() {
	t.abandoned.Store(true)
}

func (t *Task) Abandoned() bool {
	return t.abandoned.Load()
}

func (t *Task) OnComplete(fn TaskCallback) {
	t.mu.Lock()
	t.onComplete = fn
	t.mu.Unlock()
}

// DependsOn keeps t from running until other is terminal.
func (t *Task) DependsOn(other *Task) {
	if other == nil || other == t {
		return
	}
	t.mu.Lock()
	t.dependencies = append(t.dependencies, other)
	t.mu.Unlock()
}

func (t *Task) Dependencies() []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Task, len(t.dependencies))
	copy(out, t.dependencies)
	return out
}

// DependenciesMet reports whether every dependency is terminal, and whether
// one of them failed.
func (t *Task) DependenciesMet() (met bool, failed bool) {
	for _, dep := range t.Dependencies() {
		switch dep.State() {
		case TaskStateCompleted:
		case TaskStateFailed:
			failed = true
		default:
			return false, failed
		}
	}
	return true, failed
}

func (t *Task) IncrementDeferralCount() {
	t.deferrals.Add(1)
}

func (t *Task) DeferralCount() int {
	return int(t.deferrals.Load())
}

// Execute runs t on the calling goroutine. Constructed tasks are queued first.
func (t *Task) Execute() TaskState {
	if t.State() == TaskStateConstructed {
		if err := t.SetState(TaskStateQueued); err != nil {
			core.LogError(err.Error())
			return t.State()
		}
	}
	return t.run()
}

// run takes a queued task to a terminal state.
func (t *Task) run() TaskState {
	if err := t.SetState(TaskStateActive); err != nil {
		core.LogError(err.Error())
		return t.State()
	}

	result := TaskStateFailed
	switch {
	case t.Abandoned():
		core.LogDebug("task %d %q abandoned before it ran", t.id, t.name)
	default:
		if _, depFailed := t.DependenciesMet(); depFailed {
			core.LogWarn("task %d %q has a failed dependency", t.id, t.name)
		} else if t.invoke() {
			result = TaskStateCompleted
		}
	}
	return t.finish(result)
}

func (t *Task) invoke() (ok bool) {
	if t.fn == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			core.LogError("task %d %q panicked: %v", t.id, t.name, r)
			ok = false
		}
	}()
	return t.fn()
}

func (t *Task) finish(result TaskState) TaskState {
	if err := t.SetState(result); err != nil {
		core.LogError(err.Error())
		return t.State()
	}
	if t.Abandoned() {
		return result
	}
	t.mu.Lock()
	cb := t.onComplete
	t.mu.Unlock()
	if cb != nil {
		cb(t)
	}
	return result
}
