package models

// UploadRequest is a single relay call: per-request account credentials plus
// the file to forward. It is never persisted.
type UploadRequest struct {
	AccountEmail  string
	AccountSecret string
	FileName      string
	Payload       []byte // nil means missing; empty is a valid zero-length file
}

// UploadResult is produced once per UploadRequest.
type UploadResult struct {
	Success      bool        `json:"success"`
	File         *RemoteFile `json:"file,omitempty"`
	ErrorMessage string      `json:"error,omitempty"`
	Code         string      `json:"code,omitempty"`
}
