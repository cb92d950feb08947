package mailer

import (
	"errors"

	mailtpl "github.com/oksasatya/nutriquest/pkg/mailer/templates"
)

// Render resolves the message body. Explicit Subject/Text/HTML win over the template.
func (j NotificationJob) Render() (subject, text, html string, err error) {
	subject, text, html = j.Subject, j.Text, j.HTML
	if j.Template != "" {
		s, t, h, rerr := mailtpl.Render(j.Template, j.Data)
		if rerr != nil {
			return "", "", "", rerr
		}
		if subject == "" {
			subject = s
		}
		if text == "" {
			text = t
		}
		if html == "" {
			html = h
		}
	}
	if subject == "" || (text == "" && html == "") {
		return "", "", "", errors.New("notification has no content")
	}
	return subject, text, html, nil
}
