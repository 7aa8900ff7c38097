package controller

import (
	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/query"
)

// Status is the lifecycle state of a list.
type Status int

const (
	// Idle means nothing has been fetched yet.
	Idle Status = iota
	// Loading means a fetch is in flight.
	Loading
	// Ready means the last applied fetch succeeded.
	Ready
	// Errored means the last fetch or mutation failed. Data holds the last
	// good page, if any.
	Errored
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of a list at one point in time.
// It shares no memory with the controller.
type Snapshot struct {
	Status   Status
	State    query.State
	Data     []admin.Record
	Total    int
	PageInfo admin.PageInfo
	Err      error
}
