package model

// StorageInfo describes one mount the server stores media on. The `/storage`
// endpoint returns a sequence of these.
type StorageInfo struct {
	Path       string `json:"path"`
	Label      string `json:"label"`
	TotalSpace int64  `json:"totalSpace"`
	FreeSpace  int64  `json:"freeSpace"`
}
