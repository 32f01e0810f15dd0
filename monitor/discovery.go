package monitor

import (
	"time"

	"github.com/kartikmohta/submit-system/config"
	"github.com/kartikmohta/submit-system/ledger"
	"github.com/kartikmohta/submit-system/metrics"
	"github.com/kartikmohta/submit-system/notify"
	"github.com/kartikmohta/submit-system/store"

	"github.com/Noah-Huppert/golog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Discovery compares the submission store against the ledger to find new
// submission events and admits or rejects each one. Admitted submissions are
// returned as a queue of actions in oldest-first order. Repeated passes over
// unchanged submissions are no-ops.
type Discovery struct {
	// Logger
	Logger golog.Logger

	// Conf is the monitor configuration
	Conf *config.Monitor

	// Store is the submission store being watched
	Store store.Store

	// Ledger records submission statuses
	Ledger *ledger.Ledger

	// Notifier delivers rejection notices to submission owners
	Notifier notify.Notifier

	// MailDomain derives owner addresses from submission file names
	MailDomain string

	// Metrics
	Metrics metrics.Metrics
}

// Run performs one discovery pass. A store failure on the target directory
// aborts the pass, a missing project sub-directory only skips that project.
func (d Discovery) Run() ([]Action, error) {
	// Probe the target directory first so a dead connection or bad path
	// fails the whole pass instead of silently skipping every project.
	if _, err := d.Store.List(d.Conf.TargetDir); err != nil {
		return nil, err
	}

	queue := []Action{}

	for _, project := range d.Conf.Projects {
		entries, err := d.Store.List(d.Conf.TargetDir + "/" + project.Name)
		if err != nil {
			d.Logger.Errorf("project %s not present in store, skipping: %s",
				project.Name, err.Error())
			continue
		}

		d.Logger.Infof("%s: found %d submissions", project.Name, len(entries))

		for _, entry := range entries {
			if !d.isNewEvent(project.Name, entry) {
				continue
			}

			d.Metrics.SubmissionsDiscoveredTotal.
				With(prometheus.Labels{"project": project.Name}).Inc()

			if entry.Size > project.SizeLimitBytes() {
				d.reject(project, entry)
				continue
			}

			d.admit(project, entry, &queue)
		}
	}

	return queue, nil
}

// isNewEvent indicates the entry's modification time is strictly newer than
// the ledger's recorded one. Unknown files compare against epoch zero.
func (d Discovery) isNewEvent(project string, entry store.Info) bool {
	lastKnown := time.Unix(0, 0)
	if record, ok := d.Ledger.Get(project, entry.Name); ok {
		lastKnown = record.Submitted
	}

	return entry.ModTime.Truncate(time.Second).After(lastKnown)
}

// reject marks an over-limit submission file_too_large and notifies the
// owner. No action is ever enqueued for this submission event.
func (d Discovery) reject(project config.Project, entry store.Info) {
	d.Logger.Errorf("%s: submission %s is over the size limit (%d > %d bytes)",
		project.Name, entry.Name, entry.Size, project.SizeLimitBytes())

	d.Ledger.Upsert(project.Name, entry.Name, ledger.StatusFileTooLarge,
		entry.Size, entry.ModTime)
	d.Metrics.SubmissionsRejectedTotal.
		With(prometheus.Labels{"project": project.Name}).Inc()

	record, _ := d.Ledger.Get(project.Name, entry.Name)
	recipient := notify.Recipient(entry.Name, d.MailDomain)
	body := failureBody(recipient, project.Name, record, nil)
	if err := d.Notifier.Notify(recipient, subjectFailure, body); err != nil {
		d.Logger.Errorf("failed to notify %s of rejected submission: %s",
			recipient, err.Error())
	}
}

// admit marks a submission queued and appends its grading action to the queue
func (d Discovery) admit(project config.Project, entry store.Info, queue *[]Action) {
	d.Ledger.Upsert(project.Name, entry.Name, ledger.StatusQueued,
		entry.Size, entry.ModTime)

	action := Action{
		ID:         uuid.New().String(),
		Project:    project,
		Submission: entry,
	}
	*queue = append(*queue, action)

	d.Logger.Infof("%s: queued submission %s (action=%s)",
		project.Name, entry.Name, action.ID)
}
