package main

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"

	"chatstore/internal/app"
	"chatstore/internal/retention"
	"chatstore/pkg/config"
	"chatstore/pkg/logger"
	"chatstore/pkg/shutdown"
	"chatstore/pkg/state"
)

// set build metadata
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// load .env file if present
	_ = godotenv.Load(".env")

	// parse config flags
	flags := config.ParseConfigFlags()
	if !flags.Set["db"] {
		if root := state.ArtifactRoot(); root != "" {
			flags.DB = filepath.Join(root, "database")
		}
	}

	// parse config file
	fileCfg, fileExists, err := config.ParseConfigFile(flags)
	if err != nil {
		shutdown.Abort("failed to load config file", err, flags.DB)
	}

	// parse config env variables
	envCfg, envRes := config.ParseConfigEnvs()

	// load effective config
	eff, err := config.LoadEffectiveConfig(flags, fileCfg, fileExists, envCfg, envRes)
	if err != nil {
		shutdown.Abort("failed to build effective config", err, flags.DB)
	}

	// initialize logger after config is fully loaded
	logger.InitWithLevel(eff.Config.Logging.Level, eff.Config.Logging.Format)

	// ensure the filesystem layout under the db path
	paths, err := state.EnsureStateDirs(eff.DBPath)
	if err != nil {
		shutdown.Abort("failed to ensure state directories", err, eff.DBPath)
	}
	auditDir := eff.Config.Logging.AuditDir
	if auditDir == "" {
		auditDir = paths.Audit
	}
	if err := logger.AttachAuditFileSink(auditDir); err != nil {
		logger.Warn("audit_sink_attach_failed", "dir", auditDir, "error", err)
	}

	logger.Info("effective_config_loaded", "source", eff.Source, "addr", eff.Addr, "db_path", eff.DBPath)

	// set to maximum cpu's available
	numCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(numCPU)
	logger.Info("system_logical_cores", "logical_cores", numCPU)

	// register the effective config for on-demand sweeps
	retention.SetEffectiveConfig(eff)

	// initialize app
	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("failed to initialize app", err, eff.DBPath)
	}

	// set up context and signal handling for graceful shutdown
	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	// run the app; Run blocks until shutdown and tears down the server
	if err := a.Run(ctx); err != nil {
		shutdown.Abort("app run failed", err, eff.DBPath)
	}
}
