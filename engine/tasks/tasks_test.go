package tasks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/dream/engine/core"
)

func waitTerminal(t *testing.T, task *Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("task %q did not finish, state %s", task.Name(), task.State())
	}
}

func TestTaskForwardTransitions(t *testing.T) {
	task := NewTask("load", nil)
	assert.Equal(t, TaskStateConstructed, task.State())

	require.NoError(t, task.SetState(TaskStateQueued))
	require.NoError(t, task.SetState(TaskStateActive))
	require.NoError(t, task.SetState(TaskStateCompleted))
	assert.True(t, task.IsTerminal())
}

func TestTaskRejectsInvalidTransitions(t *testing.T) {
	tests := map[string]struct {
		path []TaskState
		next TaskState
	}{
		"skip queued":        {nil, TaskStateActive},
		"constructed to end": {nil, TaskStateCompleted},
		"queued back":        {[]TaskState{TaskStateQueued}, TaskStateConstructed},
		"queued to failed":   {[]TaskState{TaskStateQueued}, TaskStateFailed},
		"active back":        {[]TaskState{TaskStateQueued, TaskStateActive}, TaskStateQueued},
		"active to active":   {[]TaskState{TaskStateQueued, TaskStateActive}, TaskStateActive},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			task := NewTask(name, nil)
			for _, s := range tc.path {
				require.NoError(t, task.SetState(s))
			}
			before := task.State()
			err := task.SetState(tc.next)
			assert.ErrorIs(t, err, core.ErrInvalidTaskTransition)
			assert.Equal(t, before, task.State())
		})
	}
}

func TestTerminalTaskNeverRegresses(t *testing.T) {
	for _, terminal := range []TaskState{TaskStateCompleted, TaskStateFailed} {
		task := NewTask(terminal.String(), nil)
		require.NoError(t, task.SetState(TaskStateQueued))
		require.NoError(t, task.SetState(TaskStateActive))
		require.NoError(t, task.SetState(terminal))

		for _, s := range []TaskState{TaskStateConstructed, TaskStateQueued, TaskStateActive, TaskStateCompleted, TaskStateFailed} {
			assert.ErrorIs(t, task.SetState(s), core.ErrInvalidTaskTransition)
			assert.Equal(t, terminal, task.State())
		}
	}
}

func TestTaskExecuteSequentially(t *testing.T) {
	ok := NewTask("ok", func() bool { return true })
	assert.Equal(t, TaskStateCompleted, ok.Execute())

	fail := NewTask("fail", func() bool { return false })
	assert.Equal(t, TaskStateFailed, fail.Execute())

	boom := NewTask("panic", func() bool { panic("boom") })
	assert.Equal(t, TaskStateFailed, boom.Execute())

	// already terminal, nothing runs again
	assert.Equal(t, TaskStateFailed, fail.Execute())
}

func TestAbandonedTaskCallbackIsNoop(t *testing.T) {
	called := false
	ran := false
	task := NewTask("abandoned", func() bool {
		ran = true
		return true
	})
	task.OnComplete(func(*Task) { called = true })
	task.Abandon()

	assert.Equal(t, TaskStateFailed, task.Execute())
	assert.False(t, ran)
	assert.False(t, called)
	assert.True(t, task.Abandoned())
}

func TestTaskIDsAreUnique(t *testing.T) {
	a := NewTask("a", nil)
	b := NewTask("b", nil)
	assert.Greater(t, b.ID(), a.ID())
}

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, core.ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, core.ErrNegativeChannelSize)
}

func TestJobSystemRunsTasks(t *testing.T) {
	js, err := NewJobSystem(4, 16)
	require.NoError(t, err)

	var mu sync.Mutex
	completed := 0
	var all []*Task
	for i := 0; i < 20; i++ {
		task := NewTask("work", func() bool { return i%5 != 0 })
		task.OnComplete(func(*Task) {
			mu.Lock()
			completed++
			mu.Unlock()
		})
		require.NoError(t, js.Submit(task))
		all = append(all, task)
	}

	for _, task := range all {
		waitTerminal(t, task)
	}
	require.NoError(t, js.Shutdown())

	failed := 0
	for _, task := range all {
		if task.State() == TaskStateFailed {
			failed++
		}
	}
	assert.Equal(t, 4, failed)
	assert.Equal(t, 20, completed)
	assert.Equal(t, 0, js.Pending())

	assert.ErrorIs(t, js.Shutdown(), core.ErrJobSystemStopped)
	assert.ErrorIs(t, js.Submit(NewTask("late", nil)), core.ErrJobSystemStopped)
}

func TestJobSystemRejectsResubmission(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)
	defer js.Shutdown()

	task := NewTask("once", nil)
	require.NoError(t, js.Submit(task))
	waitTerminal(t, task)
	assert.ErrorIs(t, js.Submit(task), core.ErrInvalidTaskTransition)
}

func TestJobSystemDefersUntilDependenciesFinish(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)

	var mu sync.Mutex
	var order []string
	record := func(name string) TaskFunc {
		return func() bool {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return true
		}
	}

	a := NewTask("a", record("a"))
	b := NewTask("b", record("b"))
	b.DependsOn(a)

	require.NoError(t, js.Submit(b))
	require.NoError(t, js.Submit(a))
	waitTerminal(t, b)
	require.NoError(t, js.Shutdown())

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, b.DeferralCount())
	assert.Equal(t, TaskStateCompleted, b.State())
}

func TestFailedDependencyFailsDependent(t *testing.T) {
	a := NewTask("a", func() bool { return false })
	ran := false
	b := NewTask("b", func() bool {
		ran = true
		return true
	})
	b.DependsOn(a)

	a.Execute()
	assert.Equal(t, TaskStateFailed, b.Execute())
	assert.False(t, ran)
}

func TestShutdownFailsTasksWithUnfinishedDependencies(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	never := NewTask("never submitted", nil)
	waiting := NewTask("waiting", nil)
	waiting.DependsOn(never)
	require.NoError(t, js.Submit(waiting))

	require.Eventually(t, func() bool { return waiting.DeferralCount() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, js.Shutdown())
	assert.Equal(t, TaskStateFailed, waiting.State())
	assert.Equal(t, 0, js.Pending())
}

func TestGraphicsQueueIsFIFO(t *testing.T) {
	q := NewGraphicsQueue()
	var got []int
	for i := 0; i < 3; i++ {
		q.Push(func() { got = append(got, i) })
	}
	q.Push(nil)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, q.Drain())
}
