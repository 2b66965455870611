package metadata

import "time"

// Record is the metadata row stored for one uploaded object.
type Record struct {
	RecordID          string  `json:"record_id"`
	ObjectName        string  `json:"object_name"`
	Container         string  `json:"container"`
	SizeBytes         int64   `json:"size_bytes"`
	ContentType       string  `json:"content_type"`
	FileExtension     string  `json:"file_extension"`
	UploadTimestamp   string  `json:"upload_timestamp"`
	StoreLastModified *string `json:"store_last_modified"`
	ProcessedBy       string  `json:"processed_by"`
}

// ObjectEvent describes one object named by a notification. ObjectName is
// still percent-encoded as delivered.
type ObjectEvent struct {
	Container  string
	ObjectName string
	Size       int64
}

// Notification is one delivery of object-created events.
type Notification struct {
	Events []ObjectEvent
}

// ProcessingResult summarizes a successful Writer invocation.
type ProcessingResult struct {
	Message        string `json:"message"`
	FilesProcessed int    `json:"files_processed"`
}

// RecordSet is the full, ordered content of the metadata store.
type RecordSet struct {
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// Page is one scan response from a Store.
type Page struct {
	Records []Record
	// NextToken is empty when no more pages remain.
	NextToken string
}

// ObjectAttributes are the descriptive attributes the object store keeps for an object.
type ObjectAttributes struct {
	ContentType  string
	LastModified time.Time
}
