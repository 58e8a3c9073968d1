// Package retention runs a cron-scheduled sweeper that removes rows
// orphaned by message deletes: reaction rows for missing messages and
// index entries whose target row is gone. Page scans already tolerate
// dangling entries; the sweeper keeps them from accumulating.
package retention

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"chatstore/pkg/config"
	"chatstore/pkg/logger"
	"chatstore/pkg/models"
	"chatstore/pkg/store"
)

var storedEff *config.EffectiveConfigResult

// SetEffectiveConfig stores the effective config so tests (or admin
// triggers) can invoke sweeps on-demand. This is intended for testing only.
func SetEffectiveConfig(eff config.EffectiveConfigResult) {
	storedEff = &eff
}

// RunImmediate triggers a single sweep using the stored effective config.
func RunImmediate() error {
	if storedEff == nil {
		return fmt.Errorf("no effective config registered for retention run")
	}
	return runOnce(context.Background(), *storedEff)
}

// Start starts the sweep scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, eff config.EffectiveConfigResult) (context.CancelFunc, error) {
	ret := eff.Config.Retention

	// if retention is not enabled, return no-op cancel
	if !ret.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	// map empty cron to default daily @02:00
	cronExpr := ret.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	// validate cron expression using gronx
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", ret.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", ret.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "dry_run", ret.DryRun)
	ctx2, cancel := context.WithCancel(ctx)

	go runScheduler(ctx2, eff, cronExpr)

	logger.Info("retention_scheduler_started")
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time. This yields sharp scheduling and
// supports full cron syntax.
func runScheduler(ctx context.Context, eff config.EffectiveConfigResult, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("retention_scheduler_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if err := runOnce(ctx, eff); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// runOnce performs a single full sweep. Work proceeds in batches with a
// short sleep between them so a large backlog does not monopolize the
// store.
func runOnce(ctx context.Context, eff config.EffectiveConfigResult) error {
	ret := eff.Config.Retention
	batch := ret.BatchSize
	if batch <= 0 {
		batch = 500
	}
	sleep := time.Duration(ret.BatchSleepMs) * time.Millisecond
	if sleep <= 0 {
		sleep = 50 * time.Millisecond
	}

	start := time.Now()
	var removed, scanned int

	n, s, err := sweepReactions(ctx, batch, sleep, ret.DryRun)
	removed += n
	scanned += s
	if err != nil {
		return err
	}

	for _, prefix := range []string{"idx:ctx:", "idx:parent:"} {
		n, s, err := sweepMessageIndex(ctx, prefix, batch, sleep, ret.DryRun)
		removed += n
		scanned += s
		if err != nil {
			return err
		}
	}

	sweepsTotal.Inc()
	logger.AuditEvent("retention_sweep_done", "scanned", scanned, "removed", removed,
		"dry_run", ret.DryRun, "elapsed", time.Since(start).String())
	return nil
}

// sweepReactions removes reaction rows whose message no longer exists.
func sweepReactions(ctx context.Context, batch int, sleep time.Duration, dryRun bool) (int, int, error) {
	keys, err := store.ListKeys("react:")
	if err != nil {
		return 0, 0, err
	}
	var removed int
	for i, key := range keys {
		if ctx.Err() != nil {
			return removed, i, ctx.Err()
		}
		raw, err := store.GetKey(key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, i, err
		}
		var rx models.Reaction
		if err := json.Unmarshal([]byte(raw), &rx); err != nil {
			logger.Warn("retention_bad_reaction_row", "key", key)
			continue
		}
		if _, err := store.GetMessage(rx.MessageID); !errors.Is(err, store.ErrNotFound) {
			continue
		}
		if !dryRun {
			if err := store.DeleteReaction(rx.ID); err != nil {
				return removed, i, err
			}
		}
		removed++
		rowsPurged.WithLabelValues("reaction").Inc()
		if removed%batch == 0 {
			time.Sleep(sleep)
		}
	}
	return removed, len(keys), nil
}

// sweepMessageIndex removes index entries under prefix that point at
// deleted messages. Index values are message ids.
func sweepMessageIndex(ctx context.Context, prefix string, batch int, sleep time.Duration, dryRun bool) (int, int, error) {
	keys, err := store.ListKeys(prefix)
	if err != nil {
		return 0, 0, err
	}
	var removed int
	for i, key := range keys {
		if ctx.Err() != nil {
			return removed, i, ctx.Err()
		}
		id, err := store.GetKey(key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, i, err
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := store.GetMessage(id); !errors.Is(err, store.ErrNotFound) {
			continue
		}
		if !dryRun {
			if err := store.DeleteKey(key); err != nil {
				return removed, i, err
			}
		}
		removed++
		rowsPurged.WithLabelValues("index").Inc()
		if removed%batch == 0 {
			time.Sleep(sleep)
		}
	}
	return removed, len(keys), nil
}
