package metadata

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abduss/filemeta/internal/metrics"
)

// Store is the metadata table collaborator.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	Scan(ctx context.Context, token string) (Page, error)
}

// ObjectStore describes stored objects.
type ObjectStore interface {
	Describe(ctx context.Context, container, objectName string) (ObjectAttributes, error)
}

// Writer turns object-created notifications into metadata records.
type Writer struct {
	store   Store
	objects ObjectStore
	log     *zap.Logger
	now     func() time.Time
}

// NewWriter constructs a Writer.
func NewWriter(store Store, objects ObjectStore, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		store:   store,
		objects: objects,
		log:     log,
		now:     time.Now,
	}
}

// Process stores one record per notified object, in order. Only the object
// description step may fail without failing the invocation.
func (w *Writer) Process(ctx context.Context, n Notification) (ProcessingResult, error) {
	if len(n.Events) == 0 {
		return ProcessingResult{}, ErrEmptyNotification
	}

	for i, evt := range n.Events {
		rec, err := w.buildRecord(ctx, evt)
		if err != nil {
			return ProcessingResult{}, fmt.Errorf("event %d: %w", i, err)
		}

		if err := w.store.Upsert(ctx, rec); err != nil {
			return ProcessingResult{}, fmt.Errorf("event %d: store metadata for %q: %w", i, rec.RecordID, err)
		}
		metrics.RecordsWritten.Inc()

		w.log.Info("stored file metadata",
			zap.String("record_id", rec.RecordID),
			zap.String("object_name", rec.ObjectName),
			zap.String("container", rec.Container),
			zap.Int64("size_bytes", rec.SizeBytes),
			zap.String("content_type", rec.ContentType),
			zap.String("file_extension", rec.FileExtension),
			zap.String("upload_timestamp", rec.UploadTimestamp),
			zap.Stringp("store_last_modified", rec.StoreLastModified),
		)
	}

	return ProcessingResult{
		Message:        "File metadata processed successfully",
		FilesProcessed: len(n.Events),
	}, nil
}

func (w *Writer) buildRecord(ctx context.Context, evt ObjectEvent) (Record, error) {
	if evt.Container == "" || evt.ObjectName == "" {
		return Record{}, fmt.Errorf("%w: container and object name are required", ErrMalformedEvent)
	}
	if evt.Size < 0 {
		return Record{}, fmt.Errorf("%w: negative size %d", ErrMalformedEvent, evt.Size)
	}

	name, err := DecodeObjectName(evt.ObjectName)
	if err != nil {
		return Record{}, err
	}

	lookup := w.describe(ctx, evt.Container, name)
	return newRecord(evt.Container, name, evt.Size, lookup, w.now()), nil
}

func (w *Writer) describe(ctx context.Context, container, objectName string) Lookup {
	attrs, err := w.objects.Describe(ctx, container, objectName)
	if err != nil {
		metrics.LookupFailures.Inc()
		w.log.Warn("describe object failed, using defaults",
			zap.String("container", container),
			zap.String("object_name", objectName),
			zap.Error(err),
		)
		return Unavailable(err)
	}
	return Found(attrs)
}
