package dto

import "time"

// FileInfo is one row of the dashboard file list.
type FileInfo struct {
	ID         uint64    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DashboardResponse is the dashboard payload: the caller's files plus
// the storage accounting.
type DashboardResponse struct {
	Files      []FileInfo `json:"files"`
	UsedBytes  int64      `json:"used_bytes"`
	QuotaBytes int64      `json:"quota_bytes"`
}

// UploadResponse reports the stored file and the new counter value.
type UploadResponse struct {
	FileID    uint64 `json:"file_id"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	UsedBytes int64  `json:"used_bytes"`
}

// DeleteResponse reports the counter value after a delete.
type DeleteResponse struct {
	UsedBytes int64 `json:"used_bytes"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}
