// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"testing"
	"time"

	"github.com/arturbac/lockfree-queues"
)

func TestStackPullOnNeverPushed(t *testing.T) {
	s := lfq.NewStack[int]()
	if _, ok := s.Pull(); ok {
		t.Fatal("Pull on never-pushed stack returned true")
	}
	if !s.Empty() {
		t.Fatal("Empty() is false on never-pushed stack")
	}
	if s.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", s.Size())
	}
}

func TestStackPushPullSameThread(t *testing.T) {
	s := lfq.NewStack[string]()
	s.Push("hello")
	v, ok := s.Pull()
	if !ok || v != "hello" {
		t.Fatalf("Pull() = (%q, %v), want (\"hello\", true)", v, ok)
	}
	if _, ok := s.Pull(); ok {
		t.Fatal("Pull on drained stack returned true")
	}
}

func TestStackLIFOOrder(t *testing.T) {
	s := lfq.NewStack[int]()
	s.Push(1)
	s.Push(2)
	s.Push(3)
	for _, want := range []int{3, 2, 1} {
		v, ok := s.Pull()
		if !ok || v != want {
			t.Fatalf("Pull() = (%d, %v), want (%d, true)", v, ok, want)
		}
	}
	if !s.Empty() {
		t.Fatal("stack not empty after draining every pushed value")
	}
}

// TestStackSingleThreadBigOrder pushes 0..N-1 from a single thread,
// then drains. The multiset drained must equal 0..N-1 and the sum must
// equal N(N-1)/2.
func TestStackSingleThreadBigOrder(t *testing.T) {
	const n = 0x1FFFF
	s := lfq.NewStack[int]()
	for i := 0; i < n; i++ {
		s.Push(i)
	}
	if got := s.Size(); got != n {
		t.Fatalf("Size() = %d, want %d", got, n)
	}

	seen := make([]bool, n)
	var sum, count int64
	for {
		v, ok := s.Pull()
		if !ok {
			break
		}
		if seen[v] {
			t.Fatalf("value %d drained more than once", v)
		}
		seen[v] = true
		sum += int64(v)
		count++
	}
	if count != n {
		t.Fatalf("drained %d values, want %d", count, n)
	}
	if want := int64(n) * int64(n-1) / 2; sum != want {
		t.Fatalf("sum of drained values = %d, want %d", sum, want)
	}
	if !s.Empty() || s.Size() != 0 {
		t.Fatal("stack not empty/zero-size after full drain")
	}
}

func TestStackFinishWaitingStopsPush(t *testing.T) {
	s := lfq.NewStack[int]()
	s.Push(1)
	s.FinishWaiting(true)
	s.Push(2)
	v, ok := s.Pull()
	if !ok || v != 1 {
		t.Fatalf("Pull() = (%d, %v), want (1, true) — push after FinishWaiting(true) must be a no-op", v, ok)
	}
	if _, ok := s.Pull(); ok {
		t.Fatal("second Pull returned true; the post-shutdown Push should not have landed")
	}
}

func TestStackPullWaitReturnsOnValue(t *testing.T) {
	s := lfq.NewStack[int]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		v, ok := s.PullWait(time.Millisecond)
		if !ok || v != 42 {
			t.Errorf("PullWait() = (%d, %v), want (42, true)", v, ok)
		}
	}()
	time.Sleep(5 * time.Millisecond)
	s.Push(42)
	<-done
}

func TestStackPullWaitReturnsOnShutdown(t *testing.T) {
	s := lfq.NewStack[int]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := s.PullWait(time.Millisecond); ok {
			t.Error("PullWait() returned true on a container that only ever shut down")
		}
	}()
	time.Sleep(5 * time.Millisecond)
	s.FinishWaiting(true)
	<-done
}

func TestStackBuilderPoolPrealloc(t *testing.T) {
	s := lfq.BuildStack[int](lfq.New().PoolPrealloc(16))
	for i := 0; i < 16; i++ {
		s.Push(i)
	}
	for i := 0; i < 16; i++ {
		if _, ok := s.Pull(); !ok {
			t.Fatalf("Pull() #%d returned false, want true", i)
		}
	}
}
