package notification

import (
	"fmt"
	"net/smtp"

	log "github.com/sirupsen/logrus"
)

// Mail implements core.Notifier over plain SMTP.
type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string
	to                string
	from              string
}

// MailParams carries the SMTP connection parameters.
type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string
	To                string
	From              string
	Password          string
}

// NewMail builds a Mail notifier.
func NewMail(params MailParams) Mail {
	return Mail{
		from:              params.From,
		to:                params.To,
		smtpServerPort:    params.SMTPServerPort,
		smtpServerAddress: params.SMTPServerAddress,
		auth:              smtp.PlainAuth("", params.From, params.Password, params.SMTPServerAddress),
	}
}

// Notify sends a bare-text email.
func (m Mail) Notify(text string) {
	m.send("Aegis notification", text)
}

// OnCritical sends a severity-tagged email.
func (m Mail) OnCritical(message string) {
	m.send("🛑 CRITICAL", message)
}

// OnError sends an error email.
func (m Mail) OnError(err error) {
	m.send("⚠️ ERROR", err.Error())
}

func (m Mail) send(subject, body string) {
	serverAddress := fmt.Sprintf("%s:%d", m.smtpServerAddress, m.smtpServerPort)

	message := fmt.Sprintf("To: %q\nFrom: %q\nSubject: %s\n\n%s", m.to, m.from, subject, body)

	err := smtp.SendMail(serverAddress, m.auth, m.from, []string{m.to}, []byte(message))
	if err != nil {
		log.WithError(err).Error("notification/mail: failed to send email")
	}
}
