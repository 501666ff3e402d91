// Package model holds the canonical wire types shared by the API clients,
// the query layer, and the CLI. Each shape is defined exactly once here.
package model

import "time"

// SyncSettings is the user-configurable policy controlling whether and how
// often the server runs its periodic RSS sync task.
//
// IntervalMin must be positive, but enforcement belongs to the server: the
// client forwards values as-is and surfaces rejections unchanged.
type SyncSettings struct {
	Enabled     bool `json:"enabled"`
	IntervalMin int  `json:"intervalMin"`
}

// SyncStatus is a point-in-time snapshot of the last or currently running
// sync. The server guarantees Matched <= TotalReleases and Grabbed <= Matched.
type SyncStatus struct {
	Running       bool       `json:"running"`
	LastRun       *time.Time `json:"lastRun,omitempty"`
	TotalReleases int        `json:"totalReleases"`
	Matched       int        `json:"matched"`
	Grabbed       int        `json:"grabbed"`
	ElapsedMs     int64      `json:"elapsed"`
	Error         string     `json:"error,omitempty"`
}

// Elapsed returns the run duration. The wire format carries milliseconds.
func (s SyncStatus) Elapsed() time.Duration {
	return time.Duration(s.ElapsedMs) * time.Millisecond
}

// TriggerAck is the server's acknowledgement of an out-of-band sync request.
// It confirms only that the request was accepted; the run's outcome must be
// observed through subsequent status reads.
type TriggerAck struct {
	Message string `json:"message"`
}
