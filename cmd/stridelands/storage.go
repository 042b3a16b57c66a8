package main

import (
	"fmt"

	"github.com/stridelands/engine/internal/collision"
	"github.com/stridelands/engine/internal/config"
	"github.com/stridelands/engine/internal/monitor"
	"github.com/stridelands/engine/internal/session"
	"github.com/stridelands/engine/internal/storage"
	"github.com/stridelands/engine/internal/track"
	"github.com/stridelands/engine/internal/validate"
	"github.com/stridelands/engine/internal/worker"
	"github.com/stridelands/engine/pkg/core"
)

// initStorage creates the configured backend and wires the worker,
// dispatcher and monitor on top of it.
func initStorage() error {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, Logger)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return err
	}
	storageBackend = backend
	if err := storageBackend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return err
	}
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)

	// Warm the collision cache from storage
	territories, err := storageBackend.Territories()
	if err != nil {
		Logger.Warn("Failed to load territories into cache", "error", err)
	} else {
		TerritoryCache.ReplaceAll(territories)
		Logger.Info("Territory cache loaded", "count", len(territories))
	}

	// Initialize worker manager
	trackingCfg := config.GetTrackingConfig()
	workerManager = worker.NewManager(worker.Dependencies{
		Territories: TerritoryCache,
		LogManager:  LogManager,
		Parser:      newParser(),
		Influx:      InfluxManager,
	}, storageBackend, sessionConfig, trackingCfg.CollisionPollInterval)

	// Create the dispatcher and register worker handlers
	d, err := newDispatcher()
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	workerManager.RegisterHandlers(d)
	registerLifecycleHandlers(d)
	eventDispatcher = d
	Logger.Info("Worker handlers registered with dispatcher")

	// Start the status monitor
	monitorCfg := config.GetMonitorConfig()
	if monitorCfg.Enabled {
		monitorService = monitor.NewService(monitor.Dependencies{
			LogManager:    LogManager,
			WorkerManager: workerManager,
			Dispatcher:    eventDispatcher,
			StatusDir:     ConfigDir,
			Interval:      monitorCfg.Interval,
		})
		monitorService.Start()
	}

	return nil
}

// sessionConfig binds the configured thresholds into a session profile.
func sessionConfig(kind core.SessionKind, ownerID string) session.Config {
	trackingCfg := config.GetTrackingConfig()
	speedCfg := config.GetSpeedConfig()
	validationCfg := config.GetValidationConfig()
	collisionCfg := config.GetCollisionConfig()

	guard := track.GuardConfig{
		WarnKmh: speedCfg.ClaimWarnKmh,
		HardKmh: speedCfg.ClaimHardKmh,
	}
	if kind == core.SessionExplore {
		guard = track.GuardConfig{
			HardKmh:      speedCfg.ExploreHardKmh,
			GraceTimeout: speedCfg.ExploreOverspeedTimeout,
		}
	}

	return session.Config{
		Kind:    kind,
		OwnerID: ownerID,
		Filter: track.FilterConfig{
			MaxAccuracyMeters:       trackingCfg.MaxAccuracyMeters,
			MinInterval:             trackingCfg.MinTimeInterval,
			MinRecordDistanceMeters: trackingCfg.MinRecordDistanceMeters,
			MaxSingleMoveMeters:     trackingCfg.MaxSingleMoveMeters,
			CheckAccuracy:           true,
		},
		Guard: guard,
		Closure: validate.ClosureConfig{
			MinimumPathPoints: validationCfg.MinimumPathPoints,
			ThresholdMeters:   validationCfg.ClosureThresholdMeters,
		},
		Validation: validate.Config{
			MinimumPathPoints:  validationCfg.MinimumPathPoints,
			MinimumDistanceM:   validationCfg.MinimumTotalDistanceMeters,
			MinimumAreaM2:      validationCfg.MinimumEnclosedAreaMeters2,
			SeamExemptSegments: validationCfg.SeamExemptSegments,
		},
		Bands: collision.Bands{
			SafeAboveMeters:    collisionCfg.CautionMeters,
			CautionAboveMeters: collisionCfg.WarningMeters,
			WarningAboveMeters: collisionCfg.DangerMeters,
		},
	}
}

// exportTerritories writes the stored territories to disk when the backend
// supports file export (memory mode).
func exportTerritories() error {
	exportable, ok := storageBackend.(storage.Exportable)
	if !ok {
		return fmt.Errorf("storage backend %T does not support export", storageBackend)
	}
	if err := exportable.Export(); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Println("Exported territories to", exportable.GetExportedFilePath())
	return nil
}
