// Package notify delivers human-readable update messages to a chat channel.
package notify

import "context"

// Notifier is the text sink the disqualification monitor reports through.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Nop discards every message. Used when no webhook is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
