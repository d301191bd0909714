package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRendersMessage(t *testing.T) {
	m := NewMailer("127.0.0.1", 1025, "no-reply@indiepro.local")
	var gotAddr string
	var gotTo []string
	var gotBody string
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), Message{To: "pro@example.com", Subject: "Your code", Body: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1025", gotAddr)
	assert.Equal(t, []string{"pro@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotBody, "From: no-reply@indiepro.local\r\n"))
	assert.Contains(t, gotBody, "Subject: Your code\r\n")
	assert.True(t, strings.HasSuffix(gotBody, "\r\n\r\n123456"))
}

func TestSendRejectsHeaderInjection(t *testing.T) {
	m := NewMailer("127.0.0.1", 1025, "x@y.z")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}
	err := m.Send(context.Background(), Message{To: "a@b.co\r\nBcc: evil@x.y", Subject: "s"})
	assert.Error(t, err)
}

func TestSendWrapsTransportError(t *testing.T) {
	m := NewMailer("127.0.0.1", 1025, "x@y.z")
	boom := errors.New("refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }
	err := m.Send(context.Background(), Message{To: "a@b.co", Subject: "s"})
	assert.ErrorIs(t, err, boom)
}
