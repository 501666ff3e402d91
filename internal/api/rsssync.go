package api

import (
	"context"

	"github.com/jatassi/slipstream-go/internal/domain/model"
)

// Paths for the RSS sync resource family, relative to the API base.
const (
	rssSyncSettingsPath = "/settings/rsssync"
	rssSyncStatusPath   = "/rsssync/status"
	rssSyncTriggerPath  = "/rsssync/trigger"
)

// RSSSyncClient exposes the RSS sync resource family: sync settings, the
// status snapshot, and the manual trigger.
type RSSSyncClient struct {
	c *Client
}

// GetSettings fetches the current sync settings.
func (r *RSSSyncClient) GetSettings(ctx context.Context) (model.SyncSettings, error) {
	var settings model.SyncSettings
	if err := r.c.getJSON(ctx, rssSyncSettingsPath, &settings); err != nil {
		return model.SyncSettings{}, err
	}
	return settings, nil
}

// UpdateSettings replaces the sync settings and returns the server-confirmed
// value, which may differ from the input (the server clamps out-of-range
// intervals). Values are forwarded without client-side validation.
func (r *RSSSyncClient) UpdateSettings(
	ctx context.Context,
	settings model.SyncSettings,
) (model.SyncSettings, error) {
	var confirmed model.SyncSettings
	if err := r.c.putJSON(ctx, rssSyncSettingsPath, settings, &confirmed); err != nil {
		return model.SyncSettings{}, err
	}
	return confirmed, nil
}

// GetStatus fetches the snapshot of the last or currently running sync.
func (r *RSSSyncClient) GetStatus(ctx context.Context) (model.SyncStatus, error) {
	var status model.SyncStatus
	if err := r.c.getJSON(ctx, rssSyncStatusPath, &status); err != nil {
		return model.SyncStatus{}, err
	}
	return status, nil
}

// Trigger requests an out-of-band sync run. The returned acknowledgement says
// nothing about the run's outcome; observe that via GetStatus polling.
func (r *RSSSyncClient) Trigger(ctx context.Context) (model.TriggerAck, error) {
	var ack model.TriggerAck
	if err := r.c.postJSON(ctx, rssSyncTriggerPath, &ack); err != nil {
		return model.TriggerAck{}, err
	}
	return ack, nil
}
