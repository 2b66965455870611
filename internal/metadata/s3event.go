package metadata

import "github.com/aws/aws-lambda-go/events"

// FromS3Event converts an S3 event notification (also the shape of MinIO
// webhook notifications) into a Notification. Object keys stay encoded.
func FromS3Event(evt events.S3Event) Notification {
	n := Notification{Events: make([]ObjectEvent, 0, len(evt.Records))}
	for _, rec := range evt.Records {
		n.Events = append(n.Events, ObjectEvent{
			Container:  rec.S3.Bucket.Name,
			ObjectName: rec.S3.Object.Key,
			Size:       rec.S3.Object.Size,
		})
	}
	return n
}
