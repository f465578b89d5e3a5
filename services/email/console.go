package email

import (
	"log"
	"strings"
)

type consoleSender struct {
	from       string
	subjPrefix string
}

var _ Sender = (*consoleSender)(nil)

// NewConsoleSender logs messages instead of delivering them
func NewConsoleSender(appName, fromEmail string) Sender {
	return &consoleSender{from: fromEmail, subjPrefix: "[" + appName + "] "}
}

func (s *consoleSender) Send(messages ...Message) {
	for _, msg := range messages {
		to := make([]string, 0, len(msg.To))
		for _, addr := range msg.To {
			to = append(to, addr.String())
		}
		log.Printf("[EMAIL] From: %s To: %s Subject: %s%s (%d bytes html)",
			s.from, strings.Join(to, ", "), s.subjPrefix, msg.Subject, len(msg.HTML))
	}
}
