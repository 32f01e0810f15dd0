package notify

import (
	"fmt"
	"strings"

	"github.com/Noah-Huppert/golog"
	"github.com/jordan-wright/email"
)

// suppressedPrefix marks synthetic accounts which must never be emailed,
// only logged. Used for web upload forms and automated test submissions.
const suppressedPrefix = "web_"

// Notifier sends status change messages to submission owners. Dispatch is
// best effort, a failed send never fails the submission it describes.
type Notifier interface {
	// Notify sends a message to the given recipient address
	Notify(recipient, subject, body string) error
}

// Recipient derives a submission owner's email address from the submission
// file name: a trailing .Z archival suffix is stripped and the remainder is
// treated as a username under domain.
func Recipient(filename, domain string) string {
	username := strings.TrimSuffix(filename, ".Z")
	return fmt.Sprintf("%s@%s", username, domain)
}

// SMTPNotifier sends messages through an SMTP relay. An empty Host degrades
// to logging each message instead of sending it, which keeps local test
// setups from needing a mail server.
type SMTPNotifier struct {
	// Logger logs sends, suppressions, and dispatch failures
	Logger golog.Logger

	// Host is the SMTP relay host, empty for log-only dispatch
	Host string

	// Port is the SMTP relay port
	Port int

	// From is the From address on outgoing messages
	From string

	// Subject lines are prefixed with "<SubjectPrefix>: "
	SubjectPrefix string
}

// Notify implements Notifier
func (n SMTPNotifier) Notify(recipient, subject, body string) error {
	if strings.HasPrefix(recipient, suppressedPrefix) {
		n.Logger.Infof("suppressing notification to synthetic recipient %s: %s",
			recipient, subject)
		return nil
	}

	if n.SubjectPrefix != "" {
		subject = fmt.Sprintf("%s: %s", n.SubjectPrefix, subject)
	}

	if n.Host == "" {
		n.Logger.Infof("notification (log-only) to=%s subject=%q", recipient, subject)
		return nil
	}

	msg := email.NewEmail()
	msg.From = n.From
	msg.To = []string{recipient}
	msg.Subject = subject
	msg.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	if err := msg.Send(addr, nil); err != nil {
		return fmt.Errorf("failed to send notification to %s via %s: %s",
			recipient, addr, err.Error())
	}

	n.Logger.Debugf("sent notification to=%s subject=%q", recipient, subject)

	return nil
}
