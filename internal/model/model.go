package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&Tick{},
	&AlertEvent{},
}

// Run is one controller session, from start until the host stops stepping.
type Run struct {
	ID             uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunUUID        string         `json:"runId" gorm:"size:36;uniqueIndex:idx_run_uuid"`
	StartTime      time.Time      `json:"startTime" gorm:"type:timestamptz;"`
	EndTime        time.Time      `json:"endTime" gorm:"type:timestamptz;"`
	TimestepMs     int64          `json:"timestepMs"`
	Seed           int64          `json:"seed"`
	TrackedObjects datatypes.JSON `json:"trackedObjects"` // DEF names in discovery order
	Version        string         `json:"version" gorm:"size:32"`

	// filled in by EndRun
	Ticks         uint64 `json:"ticks"`
	Alerted       bool   `json:"alerted" gorm:"default:false"`
	AlertTick     uint64 `json:"alertTick"`
	StuckTicks    uint64 `json:"stuckTicks"`
	Perturbations uint64 `json:"perturbations"`
}

func (*Run) TableName() string {
	return "runs"
}

// Tick is one control loop iteration.
type Tick struct {
	ID           uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID        uint           `json:"runId" gorm:"index:idx_tick_run_id"`
	Run          Run            `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Tick         uint64         `json:"tick" gorm:"index:idx_tick_number"`
	Time         time.Time      `json:"time" gorm:"type:timestamptz;"`
	Mode         string         `json:"mode" gorm:"size:8"`
	Sensors      datatypes.JSON `json:"sensors"` // front then side
	LeftCommand  float64        `json:"leftCommand"`
	RightCommand float64        `json:"rightCommand"`
	Perturbed    bool           `json:"perturbed" gorm:"default:false"`
	Stuck        bool           `json:"stuck" gorm:"default:false"`
	IndicatorSet bool           `json:"indicatorSet" gorm:"default:false"`
	Indicator    uint32         `json:"indicator"`
}

func (*Tick) TableName() string {
	return "ticks"
}

// AlertEvent is the displacement that latched the alert.
type AlertEvent struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID        uint       `json:"runId" gorm:"index:idx_alert_run_id"`
	Run          Run        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Tick         uint64     `json:"tick"`
	Time         time.Time  `json:"time" gorm:"type:timestamptz;"`
	Object       string     `json:"object" gorm:"size:64"`
	Displacement geom.Point `json:"displacement"` // (dx, dz) on the ground plane
}

func (*AlertEvent) TableName() string {
	return "alert_events"
}
