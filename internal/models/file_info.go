package models

import "time"

// RemoteFile represents metadata assigned by a remote storage provider to an
// uploaded file.
type RemoteFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	Provider    string    `json:"provider,omitempty"`
	Location    string    `json:"location,omitempty"` // bucket/key or provider handle
	ContentType string    `json:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
