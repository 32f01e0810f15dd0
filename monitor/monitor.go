package monitor

import (
	"context"

	"github.com/kartikmohta/submit-system/config"
	"github.com/kartikmohta/submit-system/ledger"
	"github.com/kartikmohta/submit-system/metrics"
	"github.com/kartikmohta/submit-system/notify"
	"github.com/kartikmohta/submit-system/store"

	"github.com/Noah-Huppert/golog"
)

// Monitor runs complete submission passes: reload the ledger, discover and
// admit new submissions, execute the queued grading actions, and flush the
// ledger back to durable storage. One pass is single-threaded and strictly
// sequential, there is no concurrent ledger mutation to guard against.
type Monitor struct {
	// Logger
	Logger golog.Logger

	// Env is the ambient environment configuration
	Env *config.Env

	// Conf is the monitor configuration
	Conf *config.Monitor

	// Ledger records submission statuses
	Ledger *ledger.Ledger

	// Notifier delivers owner notifications
	Notifier notify.Notifier

	// Metrics
	Metrics metrics.Metrics
}

// RunPass performs one full monitor pass against a freshly opened submission
// store. A store connection failure fails the pass, the next invocation
// retries.
func (m *Monitor) RunPass(ctx context.Context) error {
	for _, project := range m.Conf.Projects {
		if err := m.Ledger.Load(project.Name); err != nil {
			return err
		}
	}

	st, err := store.New(m.Conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			m.Logger.Errorf("failed to close submission store: %s", err.Error())
		}
	}()

	discovery := Discovery{
		Logger:     m.Logger.GetChild("discovery"),
		Conf:       m.Conf,
		Store:      st,
		Ledger:     m.Ledger,
		Notifier:   m.Notifier,
		MailDomain: m.Env.MailDomain,
		Metrics:    m.Metrics,
	}

	queue, err := discovery.Run()
	if err != nil {
		return err
	}

	supervisor := Supervisor{
		Logger:     m.Logger.GetChild("supervisor"),
		Ledger:     m.Ledger,
		Notifier:   m.Notifier,
		MailDomain: m.Env.MailDomain,
		LogDir:     m.Conf.LogDir,
		Metrics:    m.Metrics,
	}
	supervisor.Drain(ctx, queue)

	for _, project := range m.Conf.Projects {
		if err := m.Ledger.Flush(project.Name); err != nil {
			return err
		}
	}

	return nil
}
