package service

import (
	"context"
	"encoding/json"
	"log"
)

// Mailer delivers account emails. The default implementation only logs the
// message; a real delivery backend can be swapped in without touching the
// services.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type logMailer struct{}

// NewLogMailer returns a Mailer that writes each message as a JSON log line
// instead of delivering it.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(_ context.Context, to, subject, body string) error {
	line, _ := json.Marshal(map[string]string{
		"event":   "mail",
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	log.Println(string(line))
	return nil
}
