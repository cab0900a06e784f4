package service

import "github.com/arefin/flowboard/internal/model"

// Notifier is the realtime publishing capability the mutating services
// depend on. It is injected at wiring time (realtime.Hub implements it);
// services never reach for a global connection registry.
//
// Implementations must be fire-and-forget: never block, never fail the
// caller. A mutation's success does not depend on anyone receiving its
// event.
type Notifier interface {
	TaskCreated(boardID string, task *model.Task)
	ActivityAdded(boardID string, entry *model.ActivityEntry)
}

// noopNotifier is used when a service is constructed without a hub,
// e.g. in tests that don't care about events.
type noopNotifier struct{}

func (noopNotifier) TaskCreated(string, *model.Task)            {}
func (noopNotifier) ActivityAdded(string, *model.ActivityEntry) {}
