package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// notificationBufferSize bounds the forwarding queue between fsnotify and the loop.
const notificationBufferSize = 4096

const (
	errorCreateWatcherFormat = "create filesystem watcher: %w"
	errorWatchRootFormat     = "watch %s: %w"
	errorWatchDirectoryFmt   = "watch new directory %s: %w"
)

// Source delivers notifications in order on a single channel. The channel is
// closed once the source has been closed and drained.
type Source interface {
	Notifications() <-chan Notification
	Close() error
}

// FSNotifySource watches a directory tree recursively with fsnotify.
// Directories created after startup are added as their create events arrive.
type FSNotifySource struct {
	watcher       *fsnotify.Watcher
	notifications chan Notification
	closeOnce     sync.Once
	closeError    error
}

// NewFSNotifySource registers root and every directory beneath it. Failing to
// create the watcher or to register root is returned as an error; a
// subdirectory that cannot be registered is reported on the channel instead.
func NewFSNotifySource(root string) (*FSNotifySource, error) {
	watcher, createError := fsnotify.NewWatcher()
	if createError != nil {
		return nil, fmt.Errorf(errorCreateWatcherFormat, createError)
	}
	if addError := watcher.Add(root); addError != nil {
		watcher.Close()
		return nil, fmt.Errorf(errorWatchRootFormat, root, addError)
	}

	source := &FSNotifySource{
		watcher:       watcher,
		notifications: make(chan Notification, notificationBufferSize),
	}
	pending := source.addSubdirectories(root)
	go source.forward(pending)
	return source, nil
}

// Notifications returns the ordered notification stream.
func (source *FSNotifySource) Notifications() <-chan Notification {
	return source.notifications
}

// Close stops the underlying watcher. The notification channel closes after
// fsnotify has shut down its own channels. Close is safe to call repeatedly.
func (source *FSNotifySource) Close() error {
	source.closeOnce.Do(func() {
		source.closeError = source.watcher.Close()
	})
	return source.closeError
}

// addSubdirectories registers every directory under directoryPath, excluding
// directoryPath itself, and returns registration failures.
func (source *FSNotifySource) addSubdirectories(directoryPath string) []error {
	var failures []error
	_ = filepath.WalkDir(directoryPath, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			if directoryEntry != nil && directoryEntry.IsDir() && walkedPath != directoryPath {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() || walkedPath == directoryPath {
			return nil
		}
		if addError := source.watcher.Add(walkedPath); addError != nil {
			failures = append(failures, fmt.Errorf(errorWatchDirectoryFmt, walkedPath, addError))
		}
		return nil
	})
	return failures
}

func (source *FSNotifySource) forward(pending []error) {
	defer close(source.notifications)
	for _, pendingError := range pending {
		source.notifications <- Notification{Err: pendingError}
	}

	events := source.watcher.Events
	watchErrors := source.watcher.Errors
	for events != nil || watchErrors != nil {
		select {
		case rawEvent, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if rawEvent.Has(fsnotify.Create) {
				source.watchCreatedDirectory(rawEvent.Name)
			}
			source.notifications <- Notification{Event: eventFromFSNotify(rawEvent)}
		case watchError, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			source.notifications <- Notification{Err: watchError}
		}
	}
}

func (source *FSNotifySource) watchCreatedDirectory(createdPath string) {
	info, statError := os.Stat(createdPath)
	if statError != nil || !info.IsDir() {
		return
	}
	if addError := source.watcher.Add(createdPath); addError != nil {
		source.notifications <- Notification{Err: fmt.Errorf(errorWatchDirectoryFmt, createdPath, addError)}
		return
	}
	for _, failure := range source.addSubdirectories(createdPath) {
		source.notifications <- Notification{Err: failure}
	}
}

var _ Source = (*FSNotifySource)(nil)
