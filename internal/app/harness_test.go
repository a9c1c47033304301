package app

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"sketchparty/internal/domain"
)

// manualScheduler is a Scheduler driven explicitly by tests. Advance moves the
// clock forward and fires due timers in order, so countdowns, grace periods,
// and bot delays run deterministically with no real sleeping.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	sched   *manualScheduler
	when    time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *manualScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{sched: m, when: m.now.Add(d), fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock by d, firing every due timer in chronological order.
// Callbacks run without the scheduler lock held, so they may schedule
// follow-up timers; those fire too if they fall within the window.
func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// nextDue pops the earliest unfired timer at or before target, advancing the
// clock to its deadline
func (m *manualScheduler) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next *manualTimer
	for _, t := range m.timers {
		if t.fired || t.stopped || t.when.After(target) {
			continue
		}
		if next == nil || t.when.Before(next.when) {
			next = t
		}
	}
	if next == nil {
		return nil
	}

	next.fired = true
	if next.when.After(m.now) {
		m.now = next.when
	}
	return next
}

// fakeClient records every event it receives
type fakeClient struct {
	id     string
	mu     sync.Mutex
	events []*domain.RoomEvent
	closed bool
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{id: id}
}

func (c *fakeClient) Send(event *domain.RoomEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *fakeClient) SessionID() string {
	return c.id
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) eventsOfType(eventType domain.EventType) []*domain.RoomEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []*domain.RoomEvent
	for _, e := range c.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

func (c *fakeClient) lastOfType(eventType domain.EventType) *domain.RoomEvent {
	matched := c.eventsOfType(eventType)
	if len(matched) == 0 {
		return nil
	}
	return matched[len(matched)-1]
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
