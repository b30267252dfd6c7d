// Package scheduler turns browser events into sync operations.
//
// Cookie changes on auto-push domains are collected into a pending set
// and pushed as one batch once the domain has been quiet for the debounce
// window. A watchdog bounds how long a steady stream of changes can keep
// postponing that batch: once it fires, further changes are dropped until
// the pending batch has been flushed. Tab navigation to an auto-pull
// domain pulls that domain, and a newly opened private window triggers a
// delayed incognito sync.
//
// All state is owned by a single goroutine. Events are handed to it over
// a channel and timers are kept in a min-heap of deadlines, so there is no
// locking and the clock can be replaced in tests.
package scheduler
