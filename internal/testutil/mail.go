package testutil

import (
	"sync"

	"github.com/dalemusser/showmate/internal/app/system/mailer"
)

// RecordingTransport is a mailer.Transport that keeps every message it is
// asked to deliver. When Err is set, Send records the attempt and then
// fails with Err.
type RecordingTransport struct {
	mu   sync.Mutex
	sent []mailer.Email
	Err  error
}

func (t *RecordingTransport) Send(e mailer.Email) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, e)
	return t.Err
}

// Sent returns a copy of every attempted message.
func (t *RecordingTransport) Sent() []mailer.Email {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]mailer.Email(nil), t.sent...)
}

// To returns the attempted messages addressed to addr.
func (t *RecordingTransport) To(addr string) []mailer.Email {
	var out []mailer.Email
	for _, e := range t.Sent() {
		if e.To == addr {
			out = append(out, e)
		}
	}
	return out
}

// NewRecordingGateway returns a Gateway that renders real templates into a
// RecordingTransport.
func NewRecordingGateway() (*mailer.Gateway, *RecordingTransport) {
	t := &RecordingTransport{}
	return mailer.NewGateway(t, "Showmate"), t
}
