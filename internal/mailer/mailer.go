package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends notification emails over SMTP.
type Mailer struct {
	host     string
	port     int
	from     string
	password string
}

func NewMailer(host string, port int, from, password string) *Mailer {
	return &Mailer{host: host, port: port, from: from, password: password}
}

// SendReviewReceivedEmail notifies a user that someone reviewed them.
func (m *Mailer) SendReviewReceivedEmail(toEmail, reviewerName string, rating int32) error {
	if m.from == "" || m.password == "" {
		return fmt.Errorf("mailer is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "You received a new review")
	msg.SetBody("text/plain", fmt.Sprintf("%s left you a %d-star review on Estately.", reviewerName, rating))

	d := gomail.NewDialer(m.host, m.port, m.from, m.password)
	return d.DialAndSend(msg)
}
