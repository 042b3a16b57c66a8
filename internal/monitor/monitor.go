// Package monitor runs the periodic engine health loop: it flushes the
// staged write queues on a fixed cadence and mirrors the engine status to a
// JSON file the host application can read.
package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stridelands/engine/internal/dispatcher"
	"github.com/stridelands/engine/internal/logging"
	"github.com/stridelands/engine/internal/worker"
)

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	LogManager    *logging.Manager
	WorkerManager *worker.Manager
	Dispatcher    *dispatcher.Dispatcher
	// StatusDir is where status.json is written. Empty disables the file.
	StatusDir string
	// Interval between ticks. Zero means 30 seconds.
	Interval time.Duration
}

// Status is the engine health snapshot written on every tick.
type Status struct {
	Time              time.Time      `json:"time"`
	ActiveSessions    int            `json:"activeSessions"`
	TerritoriesQueued int            `json:"territoriesQueued"`
	RunsQueued        int            `json:"runsQueued"`
	DispatcherQueues  map[string]int `json:"dispatcherQueues"`
	LastWriteMs       float32        `json:"lastWriteMs"`
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetEngineStatus returns the current engine status snapshot.
func (s *Service) GetEngineStatus() Status {
	territories, runs := s.deps.WorkerManager.QueueLengths()

	var dispatcherQueues map[string]int
	if s.deps.Dispatcher != nil {
		dispatcherQueues = s.deps.Dispatcher.QueueLengths()
	}

	return Status{
		Time:              time.Now(),
		ActiveSessions:    s.deps.WorkerManager.ActiveSessions(),
		TerritoriesQueued: territories,
		RunsQueued:        runs,
		DispatcherQueues:  dispatcherQueues,
		LastWriteMs:       float32(s.deps.WorkerManager.GetLastDBWriteDuration().Milliseconds()),
	}
}

// Start starts the monitor goroutine. Each tick flushes the write queues
// and rewrites the status file.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		var statusFile *os.File
		if s.deps.StatusDir != "" {
			var err error
			statusFile, err = os.Create(filepath.Join(s.deps.StatusDir, "status.json"))
			if err != nil {
				logger.Error("Error creating status file", "error", err)
			}
		}
		if statusFile != nil {
			defer statusFile.Close()
		}

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.tick(statusFile)
			}
		}
	}()

	return nil
}

func (s *Service) tick(statusFile *os.File) {
	logger := s.deps.LogManager.Logger()

	if err := s.deps.WorkerManager.FlushQueues("monitor"); err != nil {
		logger.Error("Error flushing write queues", "error", err)
	}

	if statusFile == nil {
		return
	}

	status := s.GetEngineStatus()
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		logger.Error("Error marshalling engine status", "error", err)
		return
	}

	statusFile.Truncate(0)
	statusFile.Seek(0, 0)
	if _, err := statusFile.Write(append(data, '\n')); err != nil {
		logger.Error("Error writing status file", "error", err)
	}
}

// Stop stops the status monitor. Safe to call repeatedly; the flag is
// cleared here, under the same lock that guards the close.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
		s.isRunning = false
	}
}
