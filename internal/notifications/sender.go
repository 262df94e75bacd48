package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/smkpro/smkpro-backend/pkg/config"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages over plain SMTP with optional auth.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender builds a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "smtp host is required")
	}
	if cfg.From == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "smtp from address is required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// Send delivers the message. The context is consulted before dialing; the
// smtp package itself does not support cancellation mid-send.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "message has no recipients")
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	payload := encode(s.cfg.From, msg)
	if err := smtp.SendMail(addr, auth, s.cfg.From, msg.To, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send mail")
	}
	return nil
}

func encode(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
