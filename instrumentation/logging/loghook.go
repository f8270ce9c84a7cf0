// Package logging provides hooks that print what the engine and the
// composed components are doing.
package logging

import (
	"log"
	"reflect"

	"github.com/sarchlab/socgen/instrumentation/hooking"
	"github.com/sarchlab/socgen/timing"
)

// A LogHook is a hook that is responsible for recording information from the
// simulation.
type LogHook interface {
	hooking.Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// Named is anything that reports a name.
type Named interface {
	Name() string
}

// EventLogger is a hook that prints the event information.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write in to the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger

	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(*timing.ScheduledEvent)
	if !ok {
		return
	}

	named, ok := evt.Handler.(Named)
	if ok {
		h.Printf("%d, %s -> %s", evt.Time, reflect.TypeOf(evt.Event), named.Name())
	} else {
		h.Printf("%d, %s", evt.Time, reflect.TypeOf(evt.Event))
	}
}

// MilestoneLogger prints one line for every hook position in its filter.
// An empty filter prints every position.
type MilestoneLogger struct {
	LogHookBase

	filter map[*hooking.HookPos]bool
	now    timing.TimeTeller
}

// NewMilestoneLogger creates a MilestoneLogger. The time teller may be nil.
func NewMilestoneLogger(
	logger *log.Logger,
	now timing.TimeTeller,
	positions ...*hooking.HookPos,
) *MilestoneLogger {
	h := &MilestoneLogger{
		filter: make(map[*hooking.HookPos]bool),
		now:    now,
	}
	h.Logger = logger

	for _, p := range positions {
		h.filter[p] = true
	}

	return h
}

// Func writes the milestone into the logger.
func (h *MilestoneLogger) Func(ctx hooking.HookCtx) {
	if len(h.filter) > 0 && !h.filter[ctx.Pos] {
		return
	}

	var when timing.VTimeInCycle
	if h.now != nil {
		when = h.now.CurrentTime()
	}

	subject := "-"
	if named, ok := ctx.Item.(Named); ok {
		subject = named.Name()
	}

	if ctx.Detail != nil {
		h.Printf("%d, %s, %s, %v", when, ctx.Pos.Name, subject, ctx.Detail)
		return
	}

	h.Printf("%d, %s, %s", when, ctx.Pos.Name, subject)
}
