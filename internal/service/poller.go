package service

import (
	"context"
	"time"

	"windhager_gateway/internal/logger"
	"windhager_gateway/internal/metrics"
	"windhager_gateway/internal/models"
)

// Fetcher runs one fetch cycle against the device.
type Fetcher interface {
	FetchAll(ctx context.Context) *models.Snapshot
}

// PollerService drives the refresh loop: one fetch cycle per tick, each
// publishing a complete snapshot into the store. Cycles run on a single
// goroutine and therefore never overlap.
type PollerService struct {
	fetcher Fetcher
	store   *SnapshotStore
	log     *logger.Logger
}

func NewPollerService(fetcher Fetcher, store *SnapshotStore, log *logger.Logger) *PollerService {
	return &PollerService{fetcher: fetcher, store: store, log: log}
}

// Run fetches immediately, then on every tick until ctx is canceled.
func (p *PollerService) Run(ctx context.Context, tick time.Duration) {
	p.cycle(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.cycle(ctx)
		}
	}
}

func (p *PollerService) cycle(ctx context.Context) {
	start := time.Now()
	snap := p.fetcher.FetchAll(ctx)
	p.store.Set(snap)

	absent := 0
	for _, v := range snap.OIDs {
		if v == nil {
			absent++
		}
	}
	metrics.FetchCycles.Inc()
	metrics.FetchDuration.Set(time.Since(start).Seconds())
	metrics.AbsentOIDs.Set(float64(absent))

	p.log.Debugw("fetch cycle complete",
		"devices", len(snap.Devices),
		"oids", len(snap.OIDs),
		"absent", absent,
		"took", time.Since(start))
}
