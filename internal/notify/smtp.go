package notify

import (
	"fmt"
	"net/smtp"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"call-insights-go/internal/logger"
)

// SMTPSender delivers plain-text mail over STARTTLS SMTP. Transient
// failures are retried with exponential backoff; a final failure is logged
// and dropped, never surfaced to the caller.
type SMTPSender struct {
	host     string
	port     string
	sender   string
	password string
	log      *logrus.Entry
}

// NewSMTPSender reads SMTP_HOST, SMTP_PORT, EMAIL_SENDER and
// EMAIL_PASSWORD from the environment.
func NewSMTPSender(log *logger.Logger) *SMTPSender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.office365.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		sender:   os.Getenv("EMAIL_SENDER"),
		password: os.Getenv("EMAIL_PASSWORD"),
		log:      log.WithField("module", "smtp"),
	}
}

func (s *SMTPSender) Send(subject, recipient, body string) {
	if recipient == "" {
		s.log.WithField("subject", subject).Warn("no recipient configured, skipping email")
		return
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.sender, recipient, subject, body,
	))
	auth := smtp.PlainAuth("", s.sender, s.password, s.host)
	addr := s.host + ":" + s.port

	operation := func() error {
		return smtp.SendMail(addr, auth, s.sender, []string{recipient}, msg)
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, b); err != nil {
		s.log.WithError(err).WithField("recipient", recipient).Error("failed to send email")
		return
	}
	s.log.WithField("recipient", recipient).WithField("subject", subject).Info("email sent")
}
