// Package email delivers transactional messages through SendGrid or the console.
package email

import (
	"net/mail"
	"sync"
)

// Message is one transactional email
type Message struct {
	To       []mail.Address
	Subject  string
	HTML     string
	Text     string
	Category string
}

// Sender delivers messages; implementations must not block the caller
type Sender interface {
	Send(messages ...Message)
}

// Recorder keeps messages in memory, used by tests
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

func (r *Recorder) Send(messages ...Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, messages...)
}

// Sent returns a copy of recorded messages
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
