// Package watch turns filesystem notifications into artifact refreshes.
package watch

import (
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies a filesystem notification.
type EventKind string

const (
	EventKindCreate EventKind = "create"
	EventKindModify EventKind = "modify"
	EventKindRemove EventKind = "remove"
	EventKindRename EventKind = "rename"
	EventKindOther  EventKind = "other"
)

// Event is a single filesystem change affecting one or more paths.
type Event struct {
	Kind  EventKind
	Paths []string
}

// String renders the event for console output.
func (event Event) String() string {
	return string(event.Kind) + " " + strings.Join(event.Paths, ", ")
}

// Notification is one item received from a Source: either an Event or an
// error reported by the subscription itself.
type Notification struct {
	Event Event
	Err   error
}

// eventFromFSNotify maps an fsnotify event onto the package model. Only a
// content write counts as a modification; a bare chmod is reported as other.
func eventFromFSNotify(raw fsnotify.Event) Event {
	kind := EventKindOther
	switch {
	case raw.Has(fsnotify.Write):
		kind = EventKindModify
	case raw.Has(fsnotify.Create):
		kind = EventKindCreate
	case raw.Has(fsnotify.Remove):
		kind = EventKindRemove
	case raw.Has(fsnotify.Rename):
		kind = EventKindRename
	}
	return Event{Kind: kind, Paths: []string{raw.Name}}
}
