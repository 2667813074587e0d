package watch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

const (
	logWatchingMessage      = "Watching for changes"
	logChangeMessage        = "File system event"
	logInitialPassFailed    = "Error during initial processing"
	logRefreshPassFailed    = "Error updating output"
	logWatcherErrorMessage  = "Watcher error"
	logSourceCloseFailed    = "Error closing watcher"
	logCoalescedMessage     = "Coalesced file system events"
	logCoalescedEventsField = "coalesced"
)

// ErrNoSubscriber is returned by Run when the loop has no way to subscribe.
var ErrNoSubscriber = errors.New("watch: subscribe function is nil")

// Refresher performs one full pass over the tree.
type Refresher interface {
	Refresh() error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func() error

// Refresh calls fn.
func (fn RefreshFunc) Refresh() error {
	return fn()
}

// SubscribeFunc opens the notification stream for the watched root.
type SubscribeFunc func() (Source, error)

// Loop refreshes the artifact once at startup and again on every accepted
// modification until the notification stream closes.
type Loop struct {
	Subscribe SubscribeFunc
	Filter    Filter
	Refresher Refresher
	Logger    *zap.Logger
	// Debounce coalesces accepted events arriving within this quiet period
	// into a single pass. Zero refreshes once per accepted event.
	Debounce time.Duration
}

// Run performs the initial pass, subscribes, and consumes notifications one
// at a time. A subscription failure is returned; pass failures and
// subscription errors are logged and the loop carries on. Cancelling ctx
// closes the source, which ends the stream and returns nil.
func (loop Loop) Run(ctx context.Context) error {
	if loop.Subscribe == nil {
		return ErrNoSubscriber
	}
	logger := loop.logger()

	if refreshError := loop.Refresher.Refresh(); refreshError != nil {
		logger.Error(logInitialPassFailed, zap.Error(refreshError))
	}

	source, subscribeError := loop.Subscribe()
	if subscribeError != nil {
		return subscribeError
	}
	logger.Info(logWatchingMessage, zap.String("root", loop.Filter.Root))

	group, groupContext := errgroup.WithContext(ctx)
	consumed := make(chan struct{})

	group.Go(func() error {
		defer close(consumed)
		loop.consume(source.Notifications(), logger)
		return nil
	})

	group.Go(func() error {
		select {
		case <-groupContext.Done():
		case <-consumed:
		}
		if closeError := source.Close(); closeError != nil {
			logger.Warn(logSourceCloseFailed, zap.Error(closeError))
		}
		return nil
	})

	return group.Wait()
}

func (loop Loop) consume(notifications <-chan Notification, logger *zap.Logger) {
	for notification := range notifications {
		if !loop.admit(notification, logger) {
			continue
		}
		if loop.Debounce <= 0 {
			loop.refresh(logger, 1)
			continue
		}
		coalesced, streamOpen := loop.settle(notifications, logger)
		loop.refresh(logger, coalesced)
		if !streamOpen {
			return
		}
	}
}

// admit logs subscription errors and reports whether notification is an
// accepted event.
func (loop Loop) admit(notification Notification, logger *zap.Logger) bool {
	if notification.Err != nil {
		logger.Error(logWatcherErrorMessage, zap.Error(notification.Err))
		return false
	}
	if !loop.Filter.Accept(notification.Event) {
		return false
	}
	logger.Info(logChangeMessage, zap.String("kind", string(notification.Event.Kind)), zap.Strings("paths", notification.Event.Paths))
	return true
}

// settle keeps receiving until Debounce elapses with no further accepted
// event. It returns how many accepted events were folded together and
// whether the stream is still open.
func (loop Loop) settle(notifications <-chan Notification, logger *zap.Logger) (int, bool) {
	coalesced := 1
	timer := time.NewTimer(loop.Debounce)
	defer timer.Stop()
	for {
		select {
		case notification, ok := <-notifications:
			if !ok {
				return coalesced, false
			}
			if !loop.admit(notification, logger) {
				continue
			}
			coalesced++
			timer.Reset(loop.Debounce)
		case <-timer.C:
			return coalesced, true
		}
	}
}

func (loop Loop) refresh(logger *zap.Logger, coalesced int) {
	if coalesced > 1 {
		logger.Info(logCoalescedMessage, zap.Int(logCoalescedEventsField, coalesced))
	}
	if refreshError := loop.Refresher.Refresh(); refreshError != nil {
		logger.Error(logRefreshPassFailed, zap.Error(refreshError))
	}
}

func (loop Loop) logger() *zap.Logger {
	if loop.Logger == nil {
		return utils.NewDiscardLogger()
	}
	return loop.Logger
}
