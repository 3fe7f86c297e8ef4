package service

import (
	"context"
	"log"
	"time"

	"fixserv/internal/domain"
)

// Reconciler retries booking-sync follow-ups that failed after a payment
// mutation committed. The Payment row is the source of truth; booking
// updates are at-least-once and idempotent, so the sweep just replays the
// current payment status until the booking store accepts it.
type Reconciler struct {
	store     Store
	sync      BookingSync
	interval  time.Duration
	batchSize int
	stop      chan struct{}
	done      chan struct{}
}

func NewReconciler(store Store, sync BookingSync, interval time.Duration, batchSize int) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Reconciler{
		store:     store,
		sync:      sync,
		interval:  interval,
		batchSize: batchSize,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (r *Reconciler) Start() {
	go func() {
		defer close(r.done)
		tick := time.NewTicker(r.interval)
		defer tick.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-tick.C:
				r.SweepOnce(context.Background())
			}
		}
	}()
}

func (r *Reconciler) Stop() {
	close(r.stop)
	<-r.done
}

// SweepOnce replays pending booking syncs and returns how many succeeded.
func (r *Reconciler) SweepOnce(ctx context.Context) int {
	pending, err := r.store.ListSyncPending(r.batchSize)
	if err != nil {
		log.Printf("[RECON] list pending failed: %v", err)
		return 0
	}
	synced := 0
	for _, p := range pending {
		if err := r.sync.SetPaymentStatus(ctx, p.BookingID, p.Status); err != nil {
			log.Printf("[RECON] sync payment=%s booking=%s: %v", p.ID, p.BookingID, err)
			continue
		}
		if p.Status == domain.PaymentRefunded || p.Status == domain.PaymentPartiallyRefunded {
			if err := r.sync.SetBookingStatus(ctx, p.BookingID, domain.BookingCancelled); err != nil {
				log.Printf("[RECON] cancel booking=%s: %v", p.BookingID, err)
				continue
			}
		}
		if err := r.store.MarkSyncDone(p.ID); err != nil {
			log.Printf("[RECON] mark done payment=%s: %v", p.ID, err)
			continue
		}
		synced++
	}
	if synced > 0 {
		log.Printf("[RECON] replayed %d booking syncs", synced)
	}
	return synced
}
