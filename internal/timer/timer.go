// Package timer schedules one-shot callbacks for popup auto-close.
//
// Callbacks never run on a timer goroutine. Queue hands fired timers to the
// owner through a channel so they execute on the control thread; Manual is a
// virtual clock that runs them from Advance.
package timer

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Handle cancels a scheduled callback.
type Handle interface {
	// Stop prevents the callback from running. It reports whether the
	// callback was still pending.
	Stop() bool
}

// Scheduler arms one-shot callbacks.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Handle
}

// Fired is a timer that has expired but not yet run.
type Fired struct {
	e *entry
}

// Run calls the callback unless the timer was stopped after it fired.
func (f Fired) Run() bool {
	if f.e == nil || !f.e.done.CompareAndSwap(false, true) {
		return false
	}
	f.e.fn()
	return true
}

type entry struct {
	fn   func()
	t    *time.Timer
	done atomic.Bool
}

func (e *entry) Stop() bool {
	if e.t != nil {
		e.t.Stop()
	}
	return e.done.CompareAndSwap(false, true)
}

// Queue is a wall-clock Scheduler. Expired timers are posted to C and run
// by the owner with Dispatch or Fired.Run.
type Queue struct {
	ch     chan Fired
	stopCh chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewQueue creates a queue whose channel buffers size fired timers.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if size < 1 {
		size = 1
	}
	return &Queue{
		ch:     make(chan Fired, size),
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

// Schedule arms fn to be posted after d.
func (q *Queue) Schedule(d time.Duration, fn func()) Handle {
	e := &entry{fn: fn}
	e.t = time.AfterFunc(d, func() {
		if e.done.Load() {
			return
		}
		select {
		case q.ch <- Fired{e: e}:
		case <-q.stopCh:
		}
	})
	return e
}

// C returns the channel of fired timers.
func (q *Queue) C() <-chan Fired {
	return q.ch
}

// Dispatch runs every fired timer already waiting in the channel without
// blocking and returns how many callbacks ran.
func (q *Queue) Dispatch() int {
	n := 0
	for {
		select {
		case f := <-q.ch:
			if f.Run() {
				n++
			} else {
				q.logger.Debug("dropped cancelled timer")
			}
		default:
			return n
		}
	}
}

// Close releases goroutines blocked on posting. Pending timers are not
// stopped; their callbacks will simply never be delivered.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.stopCh) })
}

// Manual is a virtual clock. Time only moves when Advance is called.
type Manual struct {
	now     time.Duration
	seq     uint64
	pending []*manualEntry
}

type manualEntry struct {
	due  time.Duration
	seq  uint64
	fn   func()
	done bool
}

func (e *manualEntry) Stop() bool {
	if e.done {
		return false
	}
	e.done = true
	return true
}

// NewManual returns a virtual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule arms fn to run once the clock has advanced by d.
func (m *Manual) Schedule(d time.Duration, fn func()) Handle {
	m.seq++
	e := &manualEntry{due: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, e)
	return e
}

// Now returns the virtual time elapsed since the clock was created.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Advance moves the clock forward by d, running every callback that comes
// due in deadline order. Callbacks may schedule or stop other timers. It
// returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	n := 0
	for {
		e := m.nextDue(target)
		if e == nil {
			break
		}
		if e.due > m.now {
			m.now = e.due
		}
		e.done = true
		e.fn()
		n++
	}
	m.now = target
	m.compact()
	return n
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, e := range m.pending {
		if !e.done {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Duration) *manualEntry {
	m.compact()
	sort.Slice(m.pending, func(i, j int) bool {
		if m.pending[i].due != m.pending[j].due {
			return m.pending[i].due < m.pending[j].due
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	if len(m.pending) == 0 || m.pending[0].due > target {
		return nil
	}
	return m.pending[0]
}

func (m *Manual) compact() {
	live := m.pending[:0]
	for _, e := range m.pending {
		if !e.done {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(m.pending); i++ {
		m.pending[i] = nil
	}
	m.pending = live
}
