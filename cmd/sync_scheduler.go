package main

import (
	"context"
	"log"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/config"
	"github.com/silasdani/bullet-services-sub001/internal/jobs"
	"github.com/silasdani/bullet-services-sub001/internal/services"
)

const (
	syncRunTimeout      = 5 * time.Minute
	geocodeSweepTimeout = 1 * time.Minute
	geocodeSweepBatch   = 25
)

// startSyncScheduler runs the periodic remote pull and the building
// geocode sweep on one ticker.
func startSyncScheduler(ctx context.Context, app *application, cfg config.Config, infoLog, errorLog *log.Logger) {
	interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runOnce := func() {
			// Sync goes through the job runner so transient gateway
			// failures get the runner's backoff instead of waiting a
			// whole interval.
			for _, resource := range []string{services.ResourceClients, services.ResourceInvoices, services.ResourcePayments} {
				resource := resource
				app.runner.Enqueue(jobs.Job{
					Name: "sync-" + resource,
					Run: func(ctx context.Context) error {
						runCtx, cancel := context.WithTimeout(ctx, syncRunTimeout)
						defer cancel()
						synced, err := app.syncService.SyncAll(runCtx, resource)
						if err != nil {
							return err
						}
						infoLog.Printf("scheduled sync: %s synced %d records", resource, synced)
						return nil
					},
				})
			}

			app.geocodeSweep(ctx, infoLog, errorLog)
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}

// geocodeSweep fills in coordinates for buildings that only have an
// address. Soft failures (no result) skip the building until its address
// changes by hand.
func (app *application) geocodeSweep(ctx context.Context, infoLog, errorLog *log.Logger) {
	sweepCtx, cancel := context.WithTimeout(ctx, geocodeSweepTimeout)
	defer cancel()

	buildings, err := app.buildingRepo.MissingCoordinates(sweepCtx, geocodeSweepBatch)
	if err != nil {
		errorLog.Printf("geocode sweep: list buildings: %v", err)
		return
	}
	var filled int
	for _, b := range buildings {
		lat, lon, ok, err := app.geocoder.Geocode(sweepCtx, b.Address)
		if err != nil {
			errorLog.Printf("geocode sweep: building %d: %v", b.ID, err)
			continue
		}
		if !ok {
			continue
		}
		if err := app.buildingRepo.UpdateCoordinates(sweepCtx, b.ID, lat, lon); err != nil {
			errorLog.Printf("geocode sweep: update building %d: %v", b.ID, err)
			continue
		}
		filled++
	}
	if filled > 0 {
		infoLog.Printf("geocode sweep: filled coordinates for %d buildings", filled)
	}
}
