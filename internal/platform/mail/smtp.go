// Package mail delivers plain-text transactional email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Message is a single plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends messages through an SMTP relay.
type Mailer struct {
	addr string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer constructs a Mailer for host:port sending as from.
func NewMailer(host string, port int, from string) *Mailer {
	return &Mailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		from: from,
		send: smtp.SendMail,
	}
}

// Send delivers msg. The context is checked before dialing; net/smtp itself is not cancellable.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if m == nil {
		return errors.New("mail: mailer not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("mail: recipient required")
	}
	if strings.ContainsAny(msg.To+msg.Subject, "\r\n") {
		return errors.New("mail: header injection rejected")
	}
	if err := m.send(m.addr, nil, m.from, []string{msg.To}, m.render(msg)); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func (m *Mailer) render(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
