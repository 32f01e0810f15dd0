package monitor

import (
	"fmt"
	"os"

	"github.com/kartikmohta/submit-system/ledger"
)

// Notification subjects. The notifier prefixes them with the monitored
// account name.
const (
	subjectReceived = "Submission Received"
	subjectFailure  = "Submission Failure"
)

// receivedBody builds the message sent when a submission is picked up
func receivedBody(recipient, project string, ahead int) string {
	return fmt.Sprintf("Dear %s,\n"+
		"Your submission to project %s has been received.\n"+
		"There are %d submissions ahead of you in line.\n",
		recipient, project, ahead)
}

// failureBody builds the message sent when a submission reaches a terminal
// state other than completed. Owners always see this templated message,
// never raw internal errors. Captured stdout / stderr is appended except
// when the action was killed for overrunning its time limit.
func failureBody(recipient, project string, record ledger.Record, action *Action) string {
	body := fmt.Sprintf("Dear %s,\n"+
		"Your submission to project %s has failed to execute.\n"+
		"The reason: %s\n"+
		"Please forward this email to the TA if you don't understand the problem.\n",
		recipient, project, record.Status)

	body += fmt.Sprintf("\n---------------- DATABASE ENTRY: \n"+
		"name=%s size=%s MB submitted=%d updated=%d status=%s\n",
		record.Name, record.SizeMB, record.Submitted.Unix(),
		record.Updated.Unix(), record.Status)

	if action != nil && record.Status != ledger.StatusKilled {
		body += "\n---------------- STDOUT: \n"
		body += readLog(action.StdoutPath)
		body += "\n---------------- STDERR: \n"
		body += readLog(action.StderrPath)
	}

	return body
}

// readLog returns a captured log's content, best effort
func readLog(path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("(log unavailable: %s)\n", err.Error())
	}

	return string(contents)
}
