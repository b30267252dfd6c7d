package scheduler

import (
	"container/heap"
	"time"
)

// timerKind names one of the scheduler's timers. Each kind has at most
// one deadline in the heap.
type timerKind int

const (
	timerDebounce timerKind = iota
	timerWatchdog
	timerIncognito
)

func (k timerKind) String() string {
	switch k {
	case timerDebounce:
		return "debounce"
	case timerWatchdog:
		return "watchdog"
	case timerIncognito:
		return "incognito"
	}
	return "unknown"
}

type deadline struct {
	Kind timerKind
	At   time.Time
}

// deadlineHeap is a min-heap of deadlines ordered by At.
type deadlineHeap []deadline

func (h deadlineHeap) Len() int           { return len(h) }
func (h deadlineHeap) Less(i, j int) bool { return h[i].At.Before(h[j].At) }
func (h deadlineHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) {
	*h = append(*h, x.(deadline))
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func heapPush(h *deadlineHeap, d deadline) {
	heap.Push(h, d)
}

// heapPop removes and returns the earliest deadline.
// Panics if the heap is empty.
func heapPop(h *deadlineHeap) deadline {
	return heap.Pop(h).(deadline)
}

// heapRemove drops the deadline of kind k. Returns false when none was
// armed.
func heapRemove(h *deadlineHeap, k timerKind) bool {
	for i, d := range *h {
		if d.Kind == k {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}

func heapHas(h *deadlineHeap, k timerKind) bool {
	for _, d := range *h {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// heapSet arms k at at, replacing any earlier deadline of the same kind.
func heapSet(h *deadlineHeap, k timerKind, at time.Time) {
	heapRemove(h, k)
	heapPush(h, deadline{Kind: k, At: at})
}
