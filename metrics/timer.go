package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer measures the duration of an operation and saves the result in a
// Prometheus observer. Time units are seconds.
type Timer struct {
	// startTime is the time the timer was started
	startTime time.Time
}

// Finish writes the duration between time.Now() and .startTime, in seconds,
// to the observer.
func (t Timer) Finish(observer prometheus.Observer) {
	observer.Observe(time.Since(t.startTime).Seconds())
}
