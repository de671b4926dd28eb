package bot

import (
	"context"
	"time"

	"github.com/arm32x/bobux-economy/service"
	log "github.com/sirupsen/logrus"
)

// chargeDelay is how long to sleep before the next subscription charge
func chargeDelay(now time.Time, debugTiming bool) time.Duration {
	return service.GetNextChargeTime(now, debugTiming).Sub(now)
}

// StartSubscriptionChargeWorker charges every active subscription at the start of each week.
// Returns a cleanup function to stop the worker gracefully.
func (b *Bot) StartSubscriptionChargeWorker(ctx context.Context) func() {
	stopChan := make(chan struct{})

	charge := func() {
		log.Info("Charging subscriptions for all guilds")
		if err := b.services.Subscriptions.ChargeAll(ctx); err != nil {
			log.Errorf("Error charging subscriptions: %v", err)
		}
	}

	go func() {
		for {
			delay := chargeDelay(time.Now(), b.config.SubscriptionDebugTiming)
			log.WithField("nextRun", time.Now().Add(delay).UTC().Format(time.RFC3339)).
				Info("Subscription charge worker waiting for next run")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Info("Subscription charge worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				timer.Stop()
				log.Info("Subscription charge worker shutting down (stop requested)...")
				return
			case <-timer.C:
				charge()
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
