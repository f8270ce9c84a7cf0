package timing

import "github.com/sarchlab/socgen/instrumentation/hooking"

// Handler processes events of various types. Events are plain data structs;
// handlers use type switching to tell them apart.
type Handler interface {
	Handle(event any) error
}

// TimeTeller exposes the current simulation cycle.
type TimeTeller interface {
	CurrentTime() VTimeInCycle
}

// EventScheduler schedules events in the simulation timeline.
type EventScheduler interface {
	TimeTeller
	Schedule(event ScheduledEvent)
}

// Engine drives the simulation timeline.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// Run processes events until the queue drains.
	Run() error

	// RunUntil processes every event scheduled at or before limit and then
	// advances the current time to limit.
	RunUntil(limit VTimeInCycle) error

	// Pause stops dispatching until Continue is called.
	Pause()

	// Continue resumes a paused engine.
	Continue()
}

// ScheduledEvent is the engine-facing wrapper for user-defined events.
type ScheduledEvent struct {
	// Event is the data payload to be delivered to the handler.
	Event any

	// Time is the cycle when the event should be processed.
	Time VTimeInCycle

	// Handler is the component that will process this event.
	Handler Handler

	// IsSecondary indicates if this event should be processed after all
	// primary events at the same time.
	IsSecondary bool

	seq uint64
}

// Hook positions emitted by timing engines.
var (
	HookPosBeforeEvent = &hooking.HookPos{Name: "TimingBeforeEvent"}
	HookPosAfterEvent  = &hooking.HookPos{Name: "TimingAfterEvent"}
)
