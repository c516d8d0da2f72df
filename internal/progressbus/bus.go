// Package progressbus implements the ProgressBus publish/subscribe contract
// (spec §4.11): one topic per job_id, at-least-once delivery, and the
// initial/progress/final/error frame sequence a late subscriber must still
// observe correctly.
//
// Grounded on codeready-toolchain-tarsy's pkg/api/websocket.go WSHub
// (register/unregister/broadcast channels guarded by a map+mutex), narrowed
// from one hub broadcasting to every connection to one hub keyed by job_id,
// since ProgressBus topics are per-job rather than global. The WebSocket
// wire framing itself (github.com/gorilla/websocket) lives in
// internal/server, which is the only component that talks HTTP; this
// package only deals in model.ProgressFrame values so it has no transport
// dependency of its own.
package progressbus

import (
	"sync"

	"github.com/jordigilh/uccompare/internal/model"
)

// backlogSize bounds at-least-once delivery for slow subscribers; once full,
// Publish drops the oldest frame for that subscriber rather than blocking
// the publishing Orchestrator goroutine.
const backlogSize = 64

// Subscription is a live per-job-id subscriber handle. Frames returns the
// channel for replayed + live frames; Close unregisters it (the channel is
// neither drained nor closed by Close).
type Subscription struct {
	Frames <-chan model.ProgressFrame
	bus    *Bus
	jobID  string
	ch     chan model.ProgressFrame
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s.jobID, s.ch)
}

type topic struct {
	mu          sync.Mutex
	last        *model.ProgressFrame // current state, replayed as "initial" to late subscribers
	subscribers map[chan model.ProgressFrame]struct{}
	closed      bool
}

// Bus is a per-job_id publish/subscribe registry. The zero value is not
// usable; construct with New.
type Bus struct {
	mu     sync.Mutex
	topics map[string]*topic
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{topics: make(map[string]*topic)}
}

func (b *Bus) topicFor(jobID string) *topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.topics[jobID]
	if !ok {
		t = &topic{subscribers: make(map[chan model.ProgressFrame]struct{})}
		b.topics[jobID] = t
	}
	return t
}

// Publish broadcasts frame to every current subscriber of frame.JobID and
// remembers it as the topic's current state for future subscribers' initial
// frame. The Orchestrator is the sole publisher for a given job_id (§5).
func (b *Bus) Publish(frame model.ProgressFrame) {
	t := b.topicFor(frame.JobID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	f := frame
	t.last = &f
	for ch := range t.subscribers {
		select {
		case ch <- frame:
		default:
			// Slow subscriber: drop the oldest queued frame to make room
			// rather than block the Orchestrator's publish goroutine.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- frame:
			default:
			}
		}
	}

	if frame.Type == model.FrameFinal || frame.Type == model.FrameError {
		t.closed = true
		for ch := range t.subscribers {
			close(ch)
		}
		t.subscribers = make(map[chan model.ProgressFrame]struct{})
	}
}

// Subscribe opens a subscription to jobID's topic. If the topic already has
// state (a prior Publish happened), the subscriber immediately receives an
// "initial" frame reflecting it per §4.11, even if the real initial frame
// was published before this call.
func (b *Bus) Subscribe(jobID string) *Subscription {
	t := b.topicFor(jobID)
	ch := make(chan model.ProgressFrame, backlogSize)

	t.mu.Lock()
	if t.closed && t.last != nil {
		// Topic already reached a terminal frame; replay it and close.
		final := *t.last
		t.mu.Unlock()
		ch <- final
		close(ch)
		return &Subscription{Frames: ch, bus: b, jobID: jobID, ch: ch}
	}
	t.subscribers[ch] = struct{}{}
	if t.last != nil {
		initial := *t.last
		initial.Type = model.FrameInitial
		ch <- initial
	}
	t.mu.Unlock()

	return &Subscription{Frames: ch, bus: b, jobID: jobID, ch: ch}
}

func (b *Bus) unsubscribe(jobID string, ch chan model.ProgressFrame) {
	b.mu.Lock()
	t, ok := b.topics[jobID]
	b.mu.Unlock()
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.subscribers[ch]; ok {
		delete(t.subscribers, ch)
	}
}

// Drop removes a job's topic from the bus. Channels of that topic's current
// subscribers are not closed by Drop.
func (b *Bus) Drop(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics, jobID)
}
