package metadata

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memoryStore pages records in record_id order, pageSize at a time.
type memoryStore struct {
	mu        sync.Mutex
	records   map[string]Record
	pageSize  int
	upserts   []string
	scans     []string
	upsertErr error
	scanErr   error
	// failScanAt fails the n-th scan call (1-based) with scanErr.
	failScanAt int
}

func newMemoryStore(pageSize int) *memoryStore {
	return &memoryStore{records: make(map[string]Record), pageSize: pageSize}
}

func (m *memoryStore) Upsert(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[rec.RecordID] = rec
	m.upserts = append(m.upserts, rec.RecordID)
	return nil
}

func (m *memoryStore) Scan(ctx context.Context, token string) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, token)
	if m.scanErr != nil && (m.failScanAt == 0 || m.failScanAt == len(m.scans)) {
		return Page{}, m.scanErr
	}

	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		if id > token {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	page := Page{Records: []Record{}}
	for _, id := range ids {
		if len(page.Records) == m.pageSize {
			page.NextToken = page.Records[len(page.Records)-1].RecordID
			break
		}
		page.Records = append(page.Records, m.records[id])
	}
	return page, nil
}

type fakeObjectStore struct {
	attrs map[string]ObjectAttributes
	err   error
	calls []string
}

func (f *fakeObjectStore) Describe(ctx context.Context, container, objectName string) (ObjectAttributes, error) {
	f.calls = append(f.calls, container+"/"+objectName)
	if f.err != nil {
		return ObjectAttributes{}, f.err
	}
	return f.attrs[container+"/"+objectName], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
