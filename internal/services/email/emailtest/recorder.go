// Package emailtest provides an in-memory email.Service for tests.
package emailtest

import (
	"context"
	"sync"

	"iprofit/internal/services/email"
)

// Recorder keeps every message it is given.
type Recorder struct {
	mu       sync.Mutex
	messages []email.Message
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Send(_ context.Context, msg email.Message) error {
	return r.Enqueue(msg)
}

func (r *Recorder) Enqueue(msg email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) Close() {}

// Messages returns a copy of what has been recorded.
func (r *Recorder) Messages() []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.Message(nil), r.messages...)
}

// Templates lists the template of each recorded message in order.
func (r *Recorder) Templates() []string {
	msgs := r.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Template
	}
	return out
}

var _ email.Service = (*Recorder)(nil)
