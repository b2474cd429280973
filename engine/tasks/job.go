package tasks

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/dream/engine/core"
)

/**
 * @brief A fixed pool of workers running queued tasks. Tasks whose
 * dependencies are still pending are parked and picked up again by the
 * worker that finishes their last dependency.
 */
type JobSystem struct {
	numWorkers int
	jobQueue   chan *Task
	wg         sync.WaitGroup

	// guards sending on jobQueue against Shutdown closing it
	queueMu sync.RWMutex
	stopped bool

	deferredMu sync.Mutex
	deferred   []*Task

	pending atomic.Int64
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, core.ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, core.ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan *Task, channelSize),
	}
	js.start()
	core.LogDebug("job system started with %d workers", numWorkers)
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for t := range js.jobQueue {
				js.process(t)
			}
		}()
	}
}

func (js *JobSystem) process(t *Task) {
	if met, _ := t.DependenciesMet(); !met && !t.Abandoned() {
		t.IncrementDeferralCount()
		js.deferredMu.Lock()
		js.deferred = append(js.deferred, t)
		js.deferredMu.Unlock()
		// a dependency may have finished while we were parking
		js.runReady()
		return
	}
	js.execute(t)
	js.runReady()
}

func (js *JobSystem) execute(t *Task) {
	t.run()
	js.pending.Add(-1)
}

// runReady executes parked tasks until none is runnable.
func (js *JobSystem) runReady() {
	for {
		t := js.takeReady()
		if t == nil {
			return
		}
		js.execute(t)
	}
}

func (js *JobSystem) takeReady() *Task {
	js.deferredMu.Lock()
	defer js.deferredMu.Unlock()
	for i, t := range js.deferred {
		if met, _ := t.DependenciesMet(); met || t.Abandoned() {
			js.deferred = append(js.deferred[:i], js.deferred[i+1:]...)
			return t
		}
	}
	return nil
}

/**
 * @brief Submits the provided task to be queued for execution. The task must
 * be in the constructed state.
 */
func (js *JobSystem) Submit(t *Task) error {
	js.queueMu.RLock()
	defer js.queueMu.RUnlock()
	if js.stopped {
		return core.ErrJobSystemStopped
	}
	if err := t.SetState(TaskStateQueued); err != nil {
		return fmt.Errorf("could not submit task: %w", err)
	}
	js.pending.Add(1)
	js.jobQueue <- t
	return nil
}

// Pending is the number of submitted tasks that are not terminal yet.
func (js *JobSystem) Pending() int {
	return int(js.pending.Load())
}

/**
 * @brief Shuts the job system down. Queued tasks are drained, tasks still
 * waiting on dependencies that never finished are failed.
 */
func (js *JobSystem) Shutdown() error {
	js.queueMu.Lock()
	if js.stopped {
		js.queueMu.Unlock()
		return core.ErrJobSystemStopped
	}
	js.stopped = true
	close(js.jobQueue)
	js.queueMu.Unlock()

	js.wg.Wait()

	js.deferredMu.Lock()
	left := js.deferred
	js.deferred = nil
	js.deferredMu.Unlock()
	for _, t := range left {
		core.LogWarn("task %d %q never became runnable", t.ID(), t.Name())
		if err := t.SetState(TaskStateActive); err == nil {
			t.finish(TaskStateFailed)
		}
		js.pending.Add(-1)
	}
	return nil
}
