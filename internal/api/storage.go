package api

import (
	"context"

	"github.com/jatassi/slipstream-go/internal/domain/model"
)

const storagePath = "/storage"

// StorageClient exposes the storage resource.
type StorageClient struct {
	c *Client
}

// List fetches the server's storage mounts.
func (s *StorageClient) List(ctx context.Context) ([]model.StorageInfo, error) {
	var mounts []model.StorageInfo
	if err := s.c.getJSON(ctx, storagePath, &mounts); err != nil {
		return nil, err
	}
	return mounts, nil
}
