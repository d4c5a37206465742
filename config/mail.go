package config

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Outbound mail is best-effort: a failed notification must never abort the
// action that triggered it. SendMail retries transient failures a bounded
// number of times and then gives up with a warning.

const mailMaxAttempts = 3

func mailDialer() *gomail.Dialer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := intFromEnv("SMTP_PORT", 587)
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	return gomail.NewDialer(host, port, user, password)
}

// SendMail delivers a single HTML mail. Returns the last error after all
// attempts failed; callers log it and move on.
func SendMail(to string, subject string, htmlBody string) error {
	d := mailDialer()
	if d.Username == "" {
		GetLogger().WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Warn("SMTP_USER not configured; skipping mail")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", d.Username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var err error
	for attempt := 1; attempt <= mailMaxAttempts; attempt++ {
		if err = d.DialAndSend(m); err == nil {
			return nil
		}
		time.Sleep(time.Second * time.Duration(attempt))
	}
	return err
}
