package utils

import (
	"context"
	"log"
	"time"

	"brainix/services"
	"brainix/services/catalog"

	"github.com/robfig/cron/v3"
)

// Cron specs of the background jobs
const (
	StaleOrdersSpec  = "*/15 * * * *"
	CouponExpirySpec = "0 * * * *"
	ReconcileSpec    = "0 2 * * *"
)

// InitializeScheduler registers every background job and starts the cron runner.
// The caller stops it on shutdown.
func InitializeScheduler(pendingTTL time.Duration) (*cron.Cron, error) {
	log.Println("[SCHEDULER] Initializing scheduler...")

	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	jobs := []struct {
		spec string
		run  func()
	}{
		{StaleOrdersSpec, func() { CancelStaleOrders(pendingTTL) }},
		{CouponExpirySpec, DeactivateExpiredCoupons},
		{ReconcileSpec, ReconcileInstructorStats},
	}
	for _, job := range jobs {
		if _, err := c.AddFunc(job.spec, job.run); err != nil {
			return nil, err
		}
	}

	c.Start()
	log.Println("[SCHEDULER] Scheduler started - stale orders every 15 minutes, coupons hourly, stats nightly at 02:00")
	return c, nil
}

// CancelStaleOrders cancels PENDING orders older than ttl
func CancelStaleOrders(ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := services.App.Orders.CancelStalePending(ctx, ttl, time.Now())
	if err != nil {
		log.Printf("[SCHEDULER] Error cancelling stale orders: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[SCHEDULER] Cancelled %d stale pending orders", count)
	}
}

// DeactivateExpiredCoupons switches off coupons past ValidUntil or out of uses
func DeactivateExpiredCoupons() {
	count, err := services.App.Orders.DeactivateCoupons(time.Now())
	if err != nil {
		log.Printf("[SCHEDULER] Error deactivating coupons: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[SCHEDULER] Deactivated %d coupons", count)
	}
}

// ReconcileInstructorStats recomputes every instructor's denormalized counters
func ReconcileInstructorStats() {
	count, err := catalog.ReconcileInstructorStats(services.App.Orders.DB)
	if err != nil {
		log.Printf("[SCHEDULER] Error reconciling instructor stats: %v", err)
		return
	}
	log.Printf("[SCHEDULER] Reconciled stats of %d instructors", count)
}
