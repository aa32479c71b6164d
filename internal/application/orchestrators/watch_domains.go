package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"coachdesk/internal/domain/syncbus"
)

// watcherReloadTimeout bounds one reload triggered by a bus message.
const watcherReloadTimeout = time.Minute

// MessageSource is the bus slice a watcher needs.
type MessageSource interface {
	Channel(buffer int) (<-chan syncbus.Message, func())
}

// DomainWatcherDeps holds dependencies for a cross-domain watcher.
type DomainWatcherDeps struct {
	Bus      MessageSource
	Interest []string
	Reload   func(ctx context.Context) error
	Name     string // for log lines
}

// StartDomainWatcher starts the standing loop every consumer of the
// sync bus runs: block on the message channel, and whenever a message's
// domain tags intersect the interest set, re-run the consumer's own
// load routine. The loop lives until stopCh closes.
// PRE: deps.Bus, deps.Reload set; deps.Interest non-empty
// POST: watcher goroutine runs until stopCh is closed
func StartDomainWatcher(deps DomainWatcherDeps, stopCh <-chan struct{}) {
	msgCh, unsubscribe := deps.Bus.Channel(8)

	go func() {
		defer unsubscribe()
		for {
			select {
			case msg := <-msgCh:
				if !msg.Matches(deps.Interest) {
					continue
				}
				ctx, cancel := context.WithTimeout(context.Background(), watcherReloadTimeout)
				if err := deps.Reload(ctx); err != nil {
					slog.Warn("watcher_reload_failed", "watcher", deps.Name, "message_id", msg.ID, "error", err.Error())
				} else {
					slog.Info("watcher_reloaded", "watcher", deps.Name, "message_id", msg.ID, "domains", msg.Domains)
				}
				cancel()
			case <-stopCh:
				slog.Info("watcher_stopped", "watcher", deps.Name)
				return
			}
		}
	}()
}
