package workqueue

import "sync"

// ConcurrencyStrategy controls how many tasks of each class may run at
// once. The strategy tracks running tasks and decides whether a new one can
// start.
type ConcurrencyStrategy interface {
	// CanStart returns true if a task of the given class can start now.
	CanStart(class TaskClass) bool
	// OnStart is called when a task of the given class starts.
	OnStart(class TaskClass)
	// OnComplete is called when a task of the given class finishes.
	OnComplete(class TaskClass)
}

// SerializedStrategy runs at most one task of each class at a time. A data
// task and a hint task can still run in parallel with each other.
type SerializedStrategy struct {
	mu      sync.Mutex
	running map[TaskClass]int
}

// NewSerializedStrategy creates a strategy that serializes each task class.
func NewSerializedStrategy() *SerializedStrategy {
	return &SerializedStrategy{running: make(map[TaskClass]int)}
}

func (s *SerializedStrategy) CanStart(class TaskClass) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[class] == 0
}

func (s *SerializedStrategy) OnStart(class TaskClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[class]++
}

func (s *SerializedStrategy) OnComplete(class TaskClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[class] > 0 {
		s.running[class]--
	}
}

// ThrottledDataStrategy allows up to maxData concurrent data tasks while
// keeping hint tasks serialized. This is the strategy the session uses for
// per-candidate overlap fan-out.
type ThrottledDataStrategy struct {
	mu          sync.Mutex
	maxData     int
	dataRunning int
	hintRunning bool
}

// NewThrottledDataStrategy creates a strategy that allows up to maxData
// data tasks in parallel and one hint task at a time.
func NewThrottledDataStrategy(maxData int) *ThrottledDataStrategy {
	if maxData < 1 {
		maxData = 1
	}
	return &ThrottledDataStrategy{maxData: maxData}
}

func (s *ThrottledDataStrategy) CanStart(class TaskClass) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if class == ClassHint {
		return !s.hintRunning
	}
	return s.dataRunning < s.maxData
}

func (s *ThrottledDataStrategy) OnStart(class TaskClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if class == ClassHint {
		s.hintRunning = true
		return
	}
	s.dataRunning++
}

func (s *ThrottledDataStrategy) OnComplete(class TaskClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if class == ClassHint {
		s.hintRunning = false
		return
	}
	if s.dataRunning > 0 {
		s.dataRunning--
	}
}
