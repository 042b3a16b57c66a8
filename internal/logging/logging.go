package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// logFileTimestamp keeps names sortable and free of path separators.
const logFileTimestamp = "20060102_150405"

// LogFilePath builds the per-run log file path for a service. One engine
// process writes one file, stamped with its start time.
func LogFilePath(logsDir, serviceName string, sessionStart time.Time) string {
	name := fmt.Sprintf("%s.%s.log", serviceName, sessionStart.Format(logFileTimestamp))
	return filepath.Join(logsDir, name)
}
