// Package confirm waits for submitted transactions to be accepted into the
// chain's canonical history.
package confirm

import "context"

// Watcher resolves once a transaction is confirmed on-chain, or fails on
// timeout. Implementations own their timeout bound.
type Watcher interface {
	WaitForConfirmation(ctx context.Context, txHash string) error
}

// NoopWatcher treats every transaction as immediately confirmed.
type NoopWatcher struct{}

func (NoopWatcher) WaitForConfirmation(context.Context, string) error { return nil }
