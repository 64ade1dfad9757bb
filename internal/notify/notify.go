package notify

import (
	"context"
	"fmt"
	"io"
	"mangabuff-tracker/internal/components/assert"
	"mangabuff-tracker/internal/components/telemetry"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

const report_notify_send = "notify.send"

// Notifier delivers a formatted report somewhere a person will read it.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// WriterNotifier writes reports to an io.Writer, usually stdout.
type WriterNotifier struct {
	out io.Writer
}

func NewWriterNotifier(out io.Writer) WriterNotifier {
	assert.NotNil(out)
	return WriterNotifier{out: out}
}

func (n WriterNotifier) Notify(_ context.Context, subject, body string) error {
	_, err := fmt.Fprintf(n.out, "%s\n\n%s", subject, body)
	return err
}

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// sendFunc matches (*email.Email).Send so tests can capture messages.
type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

func sendMail(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

// EmailNotifier sends reports as plain text emails.
type EmailNotifier struct {
	config SmtpConfig
	to     []string
	send   sendFunc
	tel    telemetry.API
}

func NewEmailNotifier(config SmtpConfig, to []string, tel telemetry.API) EmailNotifier {
	assert.NotEmptyStr(config.Server)
	assert.NotEmptyStr(config.EmailAddress)
	assert.NotNil(tel)

	return EmailNotifier{
		config: config,
		to:     to,
		send:   sendMail,
		tel:    telemetry.NewScopedAPI("notify", tel),
	}
}

func (n EmailNotifier) message(subject, body string) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("MangaBuff Tracker <%s>", n.config.EmailAddress)
	mail.To = n.to
	mail.Subject = subject
	mail.Text = []byte(body)
	return mail
}

func (n EmailNotifier) Notify(ctx context.Context, subject, body string) error {
	if len(n.to) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	mail := n.message(subject, body)
	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)

	err := n.send(
		mail,
		addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.send(mail, addr, nil)
	}
	if err != nil {
		n.tel.ReportBroken(report_notify_send, err, addr)
		return err
	}

	n.tel.ReportDebug("sent report", subject, n.to)
	return nil
}
