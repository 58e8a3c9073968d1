package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"chatstore/internal/retention"
	"chatstore/pkg/blob"
	"chatstore/pkg/config"
	"chatstore/pkg/progressor"
	"chatstore/pkg/query"
	"chatstore/pkg/sensor"
	"chatstore/pkg/state"
	"chatstore/pkg/store"
	"chatstore/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	retCancel context.CancelFunc
	monCancel context.CancelFunc
	sens      *sensor.Sensor

	srv *http.Server
}

// New initializes resources that do not require a running context (DB,
// validation rules, blob signing, runtime keys). It does not start the
// HTTP server; call Run to start it and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	// runtime keys
	runtimeCfg := &config.RuntimeConfig{BackendKeys: map[string]struct{}{}, SigningKeys: map[string]struct{}{}}
	for _, k := range eff.Config.Security.APIKeys.Backend {
		runtimeCfg.BackendKeys[k] = struct{}{}
		runtimeCfg.SigningKeys[k] = struct{}{}
	}
	config.SetRuntime(runtimeCfg)

	initValidation(eff)
	initBlob(eff)
	initQuery(eff)

	// open store under the canonical layout
	storePath := state.Layout(eff.DBPath).Store
	if err := store.Open(storePath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", storePath, err)
	}

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}
	return a, nil
}

// Run starts the retention sweeper (if enabled) and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	// one-shot schema migrations before serving
	if _, err := progressor.Run(ctx, a.version); err != nil {
		return err
	}

	cancel, err := retention.Start(ctx, a.eff)
	if err != nil {
		return err
	}
	a.retCancel = cancel

	a.sens = sensor.NewSensor(5 * time.Second)
	a.sens.Start()
	a.monCancel = sensor.StartPebbleMonitor(ctx, sensor.DefaultMonitorConfig())

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

func (a *App) shutdown() {
	if a.retCancel != nil {
		a.retCancel()
	}
	if a.monCancel != nil {
		a.monCancel()
	}
	if a.sens != nil {
		a.sens.Stop()
	}
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(ctx)
	}
	_ = store.Close()
}

// initValidation builds validation rules from config and sets them globally.
func initValidation(eff config.EffectiveConfigResult) {
	vr := validation.Rules{
		MaxBodyBytes:   eff.Config.Validation.MaxBodyBytes.Int(),
		ReactionValues: append([]string{}, eff.Config.Validation.ReactionValues...),
	}
	validation.SetRules(vr)
}

// initBlob installs the signed display URL settings.
func initBlob(eff config.EffectiveConfigResult) {
	blob.Configure(blob.Config{
		BaseURL: eff.Config.Blob.BaseURL,
		Secret:  eff.Config.Blob.Secret,
		TTL:     eff.Config.Blob.URLTTL.Duration(),
	})
}

// initQuery applies page engine tuning from config.
func initQuery(eff config.EffectiveConfigResult) {
	if n := eff.Config.Query.Workers; n > 0 {
		query.SetWorkers(n)
	}
	query.SetPageSizes(eff.Config.Query.DefaultPageSize, eff.Config.Query.MaxPageSize)
}
