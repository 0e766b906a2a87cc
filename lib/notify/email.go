package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
}

type EmailNotifier struct {
	config     SmtpConfig
	recipients []string
}

func NewEmailNotifier(config SmtpConfig, recipients []string) EmailNotifier {
	return EmailNotifier{
		config:     config,
		recipients: recipients,
	}
}

func (n EmailNotifier) Name() string {
	return "email"
}

func (n EmailNotifier) send(ctx context.Context, subject, body string) error {
	_, span := tracer.Start(ctx, "email.send")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Shelfwatch <%s>", n.config.EmailAddress)
	mail.To = n.recipients
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}

func (n EmailNotifier) SendAlert(ctx context.Context, alert Alert) error {
	subject := fmt.Sprintf("Product alert - %s", alert.headline())
	return n.send(ctx, subject, alert.textBody())
}

func (n EmailNotifier) SendSummary(ctx context.Context, summary Summary) error {
	return n.send(ctx, "Daily monitoring summary", summary.textBody())
}
