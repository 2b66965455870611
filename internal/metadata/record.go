package metadata

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// ProcessedBy tags every record written by this writer.
	ProcessedBy = "metadata-writer"
	// UnknownContentType replaces a content type the object store could not provide.
	UnknownContentType = "unknown"

	// TimestampLayout is fixed width so that lexical order matches time order.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// RecordID is the store key for an object: "<container>/<object name>".
func RecordID(container, objectName string) string {
	return container + "/" + objectName
}

// FileExtension returns objectName from its last '.' onward, or "" without a '.'.
func FileExtension(objectName string) string {
	idx := strings.LastIndex(objectName, ".")
	if idx < 0 {
		return ""
	}
	return objectName[idx:]
}

// DecodeObjectName reverses the form encoding applied to object keys in notifications.
func DecodeObjectName(encoded string) (string, error) {
	name, err := url.QueryUnescape(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: decode object name %q: %v", ErrMalformedEvent, encoded, err)
	}
	return name, nil
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func newRecord(container, objectName string, size int64, lookup Lookup, now time.Time) Record {
	contentType := UnknownContentType
	var lastModified *string

	if attrs, ok := lookup.Found(); ok {
		if attrs.ContentType != "" {
			contentType = attrs.ContentType
		}
		if !attrs.LastModified.IsZero() {
			ts := FormatTimestamp(attrs.LastModified)
			lastModified = &ts
		}
	}

	return Record{
		RecordID:          RecordID(container, objectName),
		ObjectName:        objectName,
		Container:         container,
		SizeBytes:         size,
		ContentType:       contentType,
		FileExtension:     FileExtension(objectName),
		UploadTimestamp:   FormatTimestamp(now),
		StoreLastModified: lastModified,
		ProcessedBy:       ProcessedBy,
	}
}
