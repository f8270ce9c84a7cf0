package soc

import (
	"log"

	"github.com/sarchlab/socgen/instrumentation/hooking"
	"github.com/sarchlab/socgen/timing"
)

type options struct {
	engine      *timing.SerialEngine
	crgHooks    []hooking.Hook
	engineHooks []hooking.Hook
	logger      *log.Logger
	logEvents   bool
}

// Option customizes Compose.
type Option func(*options)

// WithEngine runs the SoC on the given engine.
func WithEngine(e *timing.SerialEngine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithCRGHook attaches a hook to the clock and reset generator.
func WithCRGHook(h hooking.Hook) Option {
	return func(o *options) {
		o.crgHooks = append(o.crgHooks, h)
	}
}

// WithEngineHook attaches a hook to the engine.
func WithEngineHook(h hooking.Hook) Option {
	return func(o *options) {
		o.engineHooks = append(o.engineHooks, h)
	}
}

// WithLogger prints the bring-up milestones to the logger. With logEvents
// set, every dispatched event is printed too.
func WithLogger(l *log.Logger, logEvents bool) Option {
	return func(o *options) {
		o.logger = l
		o.logEvents = logEvents
	}
}
