// Package model defines the database schema. Conversions to and from the
// pure core records live in convert.go; nothing outside the storage layer
// should touch these structs.
package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&EngineInfo{},
	&Territory{},
	&ExplorationRun{},
	&EnginePerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// EngineInfo contains information about the engine instance
type EngineInfo struct {
	gorm.Model
	InstanceName  string `json:"instanceName" gorm:"size:127"`
	Description   string `json:"description" gorm:"size:255"`
	EngineVersion string `json:"engineVersion" gorm:"size:32"`
}

func (*EngineInfo) TableName() string {
	return "engine_infos"
}

// EnginePerformance is the model for engine performance metrics
type EnginePerformance struct {
	Time                time.Time         `json:"time" gorm:"index:idx_time"`
	SessionKind         string            `json:"sessionKind" gorm:"size:16"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*EnginePerformance) TableName() string {
	return "engine_performances"
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	Territories     uint16 `json:"territories"`
	ExplorationRuns uint16 `json:"explorationRuns"`
}

////////////////////////
// DOMAIN MODELS
////////////////////////

// Territory is a persisted validated claim. The polygon is stored twice:
// as WKB for spatially-aware readers and as a JSON vertex list for export.
type Territory struct {
	gorm.Model
	OwnerID      string         `json:"ownerId" gorm:"size:64;index:idx_territory_owner"`
	Name         string         `json:"name" gorm:"size:127"`
	Boundary     []byte         `json:"boundary" gorm:"type:bytes"`
	Ring         datatypes.JSON `json:"ring"`
	AreaM2       float64        `json:"areaM2"`
	MinLatitude  float64        `json:"minLatitude"`
	MinLongitude float64        `json:"minLongitude"`
	MaxLatitude  float64        `json:"maxLatitude"`
	MaxLongitude float64        `json:"maxLongitude"`
	ClaimedAt    time.Time      `json:"claimedAt" gorm:"index:idx_territory_claimed_at"`
}

func (*Territory) TableName() string {
	return "territories"
}

// ExplorationRun is a persisted completed exploration session.
type ExplorationRun struct {
	gorm.Model
	OwnerID        string    `json:"ownerId" gorm:"size:64;index:idx_run_owner"`
	DistanceMeters float64   `json:"distanceMeters"`
	SampleCount    int       `json:"sampleCount"`
	Tier           string    `json:"tier" gorm:"size:16"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
}

func (*ExplorationRun) TableName() string {
	return "exploration_runs"
}
