// internal/app/system/mailer/mailer.go
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string // empty disables AUTH (Mailpit, local relays)
	Password string
	From     string
	FromName string
}

// Mailer delivers Email over SMTP.
type Mailer struct {
	cfg  Config
	log  *zap.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New builds a Mailer for cfg.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger, send: smtp.SendMail}
}

var ErrNoRecipient = errors.New("mailer: recipient address is empty")

// Send delivers m. Errors come straight from the transport (dial, auth,
// DNS, timeout) and are the caller's to log.
func (m *Mailer) Send(e Email) error {
	if e.To == "" {
		return ErrNoRecipient
	}
	to, err := mail.ParseAddress(e.To)
	if err != nil {
		return fmt.Errorf("mailer: bad recipient %q: %w", e.To, err)
	}

	msg, err := m.build(e, to.Address)
	if err != nil {
		return err
	}

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)

	start := time.Now()
	if err := m.send(addr, a, m.cfg.From, []string{to.Address}, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to.Address, err)
	}
	m.log.Debug("email sent",
		zap.String("to", to.Address),
		zap.String("subject", e.Subject),
		zap.Duration("took", time.Since(start)))
	return nil
}

// build renders a multipart/alternative message with text and HTML parts.
func (m *Mailer) build(e Email, to string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	from := (&mail.Address{Name: m.cfg.FromName, Address: m.cfg.From}).String()
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@showmate>\r\n", uuid.NewString())
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())

	parts := []struct {
		ctype string
		body  string
	}{
		{"text/plain; charset=utf-8", e.TextBody},
		{"text/html; charset=utf-8", e.HTMLBody},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		pw, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.ctype},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
