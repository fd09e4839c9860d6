// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"context"
	"sync"

	"iprofit/internal/services/events"
)

type Published struct {
	Subject string
	Payload interface{}
}

type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(_ context.Context, subject string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Subject: subject, Payload: payload})
	return nil
}

func (r *Recorder) Close() {}

// Subjects lists the published subjects in order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject
	}
	return out
}

var _ events.Publisher = (*Recorder)(nil)
