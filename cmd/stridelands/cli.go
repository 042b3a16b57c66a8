package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stridelands/engine/internal/dispatcher"
	"github.com/stridelands/engine/internal/monitor"
	"github.com/stridelands/engine/internal/session"
	"github.com/stridelands/engine/pkg/core"
)

func newDispatcher() (*dispatcher.Dispatcher, error) {
	return dispatcher.New(Logger)
}

// registerLifecycleHandlers registers system command handlers with the
// dispatcher, for embedding hosts that drive the engine by command strings.
func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{CurrentEngineVersion, BuildDate}, nil
	})

	d.Register(":ENGINE:STATUS:", func(e dispatcher.Event) (any, error) {
		status := engineStatus()
		data, err := json.Marshal(status)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	})

	d.Register(":EXPORT:", func(e dispatcher.Event) (any, error) {
		if err := exportTerritories(); err != nil {
			return nil, err
		}
		return "ok", nil
	})
}

func engineStatus() monitor.Status {
	if monitorService != nil {
		return monitorService.GetEngineStatus()
	}
	// Monitor disabled; take a one-off snapshot.
	return monitor.NewService(monitor.Dependencies{
		LogManager:    LogManager,
		WorkerManager: workerManager,
		Dispatcher:    eventDispatcher,
	}).GetEngineStatus()
}

func printEngineStatus() {
	data, err := json.MarshalIndent(engineStatus(), "", "  ")
	if err != nil {
		fmt.Println("error building status:", err)
		return
	}
	fmt.Println(string(data))
}

// replayFix is one NDJSON line of a recorded walk.
type replayFix struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracyMeters"`
	ObservedAt     time.Time `json:"observedAt"`
}

// replaySession feeds a recorded walk through a live session and prints the
// outcome.
func replaySession(kindArg, ownerID, path string) error {
	var kind core.SessionKind
	switch strings.ToLower(kindArg) {
	case "claim":
		kind = core.SessionClaim
	case "explore":
		kind = core.SessionExplore
	default:
		return fmt.Errorf("unknown session kind %q", kindArg)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening fix file: %w", err)
	}
	defer f.Close()

	s, err := workerManager.StartSession(kind, ownerID)
	if err != nil {
		return fmt.Errorf("error starting session: %w", err)
	}

	replayStart := time.Now()
	lineNo := 0
	fed := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec replayFix
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			Logger.Warn("Skipping malformed fix line", "line", lineNo, "error", err)
			continue
		}

		err := workerManager.IngestFix(ownerID, core.Fix{
			Point:          core.Point{Latitude: rec.Latitude, Longitude: rec.Longitude},
			AccuracyMeters: rec.AccuracyMeters,
			ObservedAt:     rec.ObservedAt,
		})
		if err != nil {
			// The session ended mid-replay (hard stop or collision).
			break
		}
		fed++

		// Collisions are normally checked on a timer; a replay outruns it.
		if s.State() == session.StateActive {
			s.PollCollision()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading fix file: %w", err)
	}

	summary, err := workerManager.StopSession(ownerID)
	if err != nil {
		return err
	}

	if err := workerManager.FlushQueues("replay"); err != nil {
		Logger.Error("Error flushing queues after replay", "error", err)
	}

	fmt.Printf("Replayed %d fixes in %s\n", fed, time.Since(replayStart))
	printSummary(s, summary)
	return nil
}

func printSummary(s *session.Session, summary session.Summary) {
	fmt.Printf("State:     %s\n", summary.State)
	if summary.StopReason != core.StopNone {
		fmt.Printf("Stopped:   %s\n", summary.StopReason)
	}
	fmt.Printf("Distance:  %.1f m\n", summary.DistanceMeters)
	fmt.Printf("Samples:   %d\n", summary.SampleCount)

	if result, ok := s.Validation(); ok {
		if result.Valid() {
			fmt.Printf("Claim:     valid, %.1f m²\n", result.AreaM2)
		} else {
			fmt.Printf("Claim:     rejected (%s) %s\n", result.Reason, result.Detail)
		}
	}
}
