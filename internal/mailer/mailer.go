package mailer

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"gopkg.in/mail.v2"
)

//go:embed "templates"
var templateFS embed.FS

// The Mailer struct contains a mail.Dialer instance (used to connect to a
// SMTP server) and the sender information for emails (the name and address you
// want the email to be from, such as "Alice Smith <alice@example.com>").
type Mailer struct {
	dialer *mail.Dialer
	sender string
}

// New initializes a new mail.Dialer instance with the given SMTP server settings.
// We also configure this to use a 5-second timeout whenever we send an email.
func New(host string, port int, username, password, sender string) Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second
	return Mailer{
		dialer: dialer,
		sender: sender,
	}
}

// Send takes the recipient email address as the first parameter, the name of the file
// containing the templates, and any dynamic data for the templates as an interface{}
// parameter, and uses these to send an email.
func (m Mailer) Send(recipient, templateFile string, data interface{}) error {
	msg, err := m.message(recipient, templateFile, data)
	if err != nil {
		return err
	}
	for i := 1; i <= 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return err
}

func (m Mailer) message(recipient, templateFile string, data interface{}) (*mail.Message, error) {
	subject, plainBody, htmlBody, err := render(templateFile, data)
	if err != nil {
		return nil, err
	}
	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)
	return msg, nil
}

// render executes the subject, plainBody and htmlBody templates of templateFile.
func render(templateFile string, data interface{}) (subject, plainBody, htmlBody string, err error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	parts := make([]string, 0, 3)
	for _, name := range []string{"subject", "plainBody", "htmlBody"} {
		buf.Reset()
		if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			return "", "", "", err
		}
		parts = append(parts, buf.String())
	}
	return parts[0], parts[1], parts[2], nil
}
