package logging

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/socgen/instrumentation/hooking"
	"github.com/sarchlab/socgen/timing"
)

type namedHandler struct{}

func (namedHandler) Name() string          { return "Target" }
func (namedHandler) Handle(event any) error { return nil }

type namedItem string

func (n namedItem) Name() string { return string(n) }

var _ = Describe("EventLogger", func() {
	It("should print the event time, type and handler", func() {
		buf := new(bytes.Buffer)
		engine := timing.NewSerialEngine()
		engine.AcceptHook(NewEventLogger(log.New(buf, "", 0)))

		engine.Schedule(timing.ScheduledEvent{
			Event:   &timing.TickEvent{},
			Time:    3,
			Handler: namedHandler{},
		})
		Expect(engine.Run()).To(Succeed())

		Expect(buf.String()).To(Equal("3, *timing.TickEvent -> Target\n"))
	})
})

var _ = Describe("MilestoneLogger", func() {
	var (
		buf    *bytes.Buffer
		wanted = &hooking.HookPos{Name: "Wanted"}
		other  = &hooking.HookPos{Name: "Other"}
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
	})

	It("should print only filtered positions", func() {
		h := NewMilestoneLogger(log.New(buf, "", 0), nil, wanted)

		h.Func(hooking.HookCtx{Pos: other, Item: namedItem("a")})
		h.Func(hooking.HookCtx{Pos: wanted, Item: namedItem("b"), Detail: 4})

		Expect(buf.String()).To(Equal("0, Wanted, b, 4\n"))
	})

	It("should use the time teller", func() {
		engine := timing.NewSerialEngine()
		Expect(engine.RunUntil(12)).To(Succeed())
		h := NewMilestoneLogger(log.New(buf, "", 0), engine)

		h.Func(hooking.HookCtx{Pos: other})

		Expect(buf.String()).To(Equal("12, Other, -\n"))
	})
})
