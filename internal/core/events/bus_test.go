package events_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/star-supla/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var (
		ctx context.Context
		bus *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("should do nothing when nobody listens", func() {
		Expect(bus.PublishSync(ctx, events.NewSessionEnded(false))).To(Succeed())
	})

	It("should run handlers in registration order", func() {
		var calls []string
		bus.Subscribe(events.SessionForbiddenEvent, func(_ context.Context, _ events.Event) error {
			calls = append(calls, "first")
			return nil
		})
		bus.Subscribe(events.SessionForbiddenEvent, func(_ context.Context, e events.Event) error {
			forbidden := e.(events.SessionForbidden)
			calls = append(calls, forbidden.Path)
			return nil
		})

		Expect(bus.PublishSync(ctx, events.NewSessionForbidden("GET", "User", "nope"))).To(Succeed())
		Expect(calls).To(Equal([]string{"first", "User"}))
	})

	It("should only deliver to matching subscribers", func() {
		called := false
		bus.Subscribe(events.SessionStaleEvent, func(context.Context, events.Event) error {
			called = true
			return nil
		})

		Expect(bus.PublishSync(ctx, events.NewSessionEstablished("admin", true))).To(Succeed())
		Expect(called).To(BeFalse())
	})

	It("should stop at the first failing handler", func() {
		second := false
		bus.Subscribe(events.SessionEndedEvent, func(context.Context, events.Event) error {
			return fmt.Errorf("store unavailable")
		})
		bus.Subscribe(events.SessionEndedEvent, func(context.Context, events.Event) error {
			second = true
			return nil
		})

		err := bus.PublishSync(ctx, events.NewSessionEnded(true))
		Expect(err).To(MatchError(ContainSubstring("store unavailable")))
		Expect(second).To(BeFalse())
	})

	It("should carry the payload on the base event", func() {
		event := events.NewSessionStale("Me failed")
		Expect(event.EventType()).To(Equal(events.SessionStaleEvent))
		Expect(event.EventID()).NotTo(BeEmpty())
		Expect(event.Payload()).To(HaveKeyWithValue("reason", "Me failed"))
	})
})
