package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to, subject, body string
	err               error
}

func (c *captureSender) Send(to, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	return c.err
}

func TestSendWelcomeEmail(t *testing.T) {
	sender := &captureSender{}
	svc := NewServiceWithSender(sender, "https://lankamarket.lk")

	err := svc.SendWelcomeEmail(context.Background(), "sunil@example.lk", "Sunil", "LM-7F3A9C21")
	require.NoError(t, err)

	assert.Equal(t, "sunil@example.lk", sender.to)
	assert.Equal(t, "Welcome to LankaMarket", sender.subject)
	assert.Contains(t, sender.body, "Ayubowan, Sunil!")
	assert.Contains(t, sender.body, "https://lankamarket.lk/listings")
	assert.Contains(t, sender.body, "LM-7F3A9C21")
}

func TestSendWelcomeEmail_EscapesName(t *testing.T) {
	sender := &captureSender{}
	svc := NewServiceWithSender(sender, "https://lankamarket.lk")

	require.NoError(t, svc.SendWelcomeEmail(context.Background(), "x@example.lk", "<script>", "LM-1"))
	assert.NotContains(t, sender.body, "<script>")
}

func TestSendWelcomeEmail_SenderError(t *testing.T) {
	svc := NewServiceWithSender(&captureSender{err: errors.New("smtp down")}, "https://lankamarket.lk")

	err := svc.SendWelcomeEmail(context.Background(), "x@example.lk", "X", "LM-1")
	assert.ErrorContains(t, err, "smtp down")
}
