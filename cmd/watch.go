package cmd

import (
	"context"
	"time"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/events"
	"github.com/frahmantamala/star-supla/pkg/logger"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cached session fresh",
	Long:  `Revalidate the cached session on an interval and report session events until interrupted or logged out.`,
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if watchInterval <= 0 {
			return internal.NewValidationFieldError("interval", "interval must be positive", internal.ErrCodeValidationFailed)
		}
		lg := logger.From(ctx)

		ended := make(chan bool, 1)
		report := func(_ context.Context, event events.Event) error {
			lg.Info("session event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			if e, ok := event.(events.SessionEnded); ok {
				select {
				case ended <- e.Forced:
				default:
				}
			}
			return nil
		}
		deps.Bus.Subscribe(events.SessionStaleEvent, report)
		deps.Bus.Subscribe(events.SessionEndedEvent, report)

		lg.Info("watching session. Press Ctrl+C to stop.",
			"user_name", deps.Auth.CurrentUser().Name,
			"interval", watchInterval)

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				lg.Info("received signal, stopping session watch")
				return nil
			case forced := <-ended:
				lg.Warn("session ended, stopping session watch", "forced", forced)
				return nil
			case <-ticker.C:
				// failures are reported through the stale event
				_ = deps.Auth.Revalidate(ctx)
			}
		}
	}),
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Minute, "revalidation interval")
}
