// Package notify delivers user-facing outcome notifications. Delivery is
// fire-and-forget; no return contract is relied upon.
package notify

import "github.com/tokenflow/tokenflow/logger"

// Notifier receives exactly one call per flow invocation, success or error.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NoopNotifier drops all notifications.
type NoopNotifier struct{}

func (NoopNotifier) Success(string) {}
func (NoopNotifier) Error(string)   {}

// LogNotifier forwards notifications to a logger.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(msg string) {
	n.log.Info(msg, map[string]any{"notification": "success"})
}

func (n *LogNotifier) Error(msg string) {
	n.log.Error(msg, map[string]any{"notification": "error"})
}
