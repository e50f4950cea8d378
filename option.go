package tokenflow

import (
	"github.com/tokenflow/tokenflow/logger"
	"github.com/tokenflow/tokenflow/metrics"
	"github.com/tokenflow/tokenflow/notify"
)

type Option func(*Orchestrator)

func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.metrics = r
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}
