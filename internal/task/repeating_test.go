package task

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRepeatingTaskRunsUntilStopped(t *testing.T) {
	var runs int32
	task := NewRepeating(func() {
		atomic.AddInt32(&runs, 1)
	}, time.Millisecond)

	task.Start()
	task.Start()
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&runs) < 3 {
		if time.Now().After(deadline) {
			t.Fatal("task did not run repeatedly")
		}
		time.Sleep(time.Millisecond)
	}
	task.Stop(false)

	stopped := atomic.LoadInt32(&runs)
	time.Sleep(10 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != stopped {
		t.Fatalf("task ran %d more times after Stop", got-stopped)
	}
}

func TestRepeatingTaskForceExecOnStop(t *testing.T) {
	var runs int32
	task := NewRepeating(func() {
		atomic.AddInt32(&runs, 1)
	}, time.Hour)

	task.Stop(true)
	if atomic.LoadInt32(&runs) != 0 {
		t.Fatal("Stop on a task that never started must be a no-op")
	}

	task.Start()
	task.Stop(true)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
}
