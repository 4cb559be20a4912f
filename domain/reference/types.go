// Package reference holds the reference lists tickets are reconciled against
package reference

import (
	"time"

	"salondesk/domain/core"
)

// Well-known reference list names, matching the tab titles of the daily workbook
const (
	ListTraining  = "Training"
	List16Digits  = "16 Digits"
	ListContact   = "Contact"
	ListSalonsCID = "SALON CID"
)

// Entry is one cleaned row of a reference list
type Entry struct {
	List  string            `json:"list" db:"list_name"`
	CID   string            `json:"cid" db:"cid"`
	Phone string            `json:"phone" db:"phone"`
	Data  map[string]string `json:"data,omitempty" db:"-"`
}

// Salon is one row of the salon master list
type Salon struct {
	CID  string `json:"cid" db:"cid"`
	Name string `json:"salon_name" db:"salon_name"`
}

// RunStatus is the outcome of a reconcile run
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// Run records one reconcile pass
type Run struct {
	ID         core.RunID     `json:"id" db:"id"`
	StartedAt  time.Time      `json:"started_at" db:"started_at"`
	FinishedAt time.Time      `json:"finished_at" db:"finished_at"`
	Status     RunStatus      `json:"status" db:"status"`
	Counts     map[string]int `json:"counts" db:"-"`
	Salons     int            `json:"salons" db:"salon_count"`
	Error      string         `json:"error,omitempty" db:"error_message"`
}
