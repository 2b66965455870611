package metadata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(store *memoryStore, n int, base time.Time) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("uploads/file-%03d.txt", i)
		// Interleave timestamps so that id order differs from time order.
		ts := base.Add(time.Duration((i*37)%n) * time.Minute)
		store.records[id] = Record{RecordID: id, UploadTimestamp: FormatTimestamp(ts)}
	}
}

func TestListAllAcrossPages(t *testing.T) {
	store := newMemoryStore(100)
	seed(store, 250, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	set, err := NewReader(store).ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, set.Count)
	assert.Len(t, set.Records, 250)
	assert.Len(t, store.scans, 3)
	assert.Equal(t, "", store.scans[0])
	assert.True(t, sort.SliceIsSorted(set.Records, func(i, j int) bool {
		return set.Records[i].UploadTimestamp > set.Records[j].UploadTimestamp
	}))

	seen := make(map[string]bool, len(set.Records))
	for _, rec := range set.Records {
		seen[rec.RecordID] = true
	}
	assert.Len(t, seen, 250)
}

func TestListAllEmptyStore(t *testing.T) {
	store := newMemoryStore(10)

	set, err := NewReader(store).ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, set.Count)
	assert.NotNil(t, set.Records)
	assert.Empty(t, set.Records)
	assert.Len(t, store.scans, 1)
}

func TestListAllPutsMissingTimestampsLast(t *testing.T) {
	store := newMemoryStore(2)
	store.records["a"] = Record{RecordID: "a", UploadTimestamp: "2024-01-01T00:00:00.000000Z"}
	store.records["b"] = Record{RecordID: "b"}
	store.records["c"] = Record{RecordID: "c", UploadTimestamp: "2024-06-01T00:00:00.000000Z"}
	store.records["d"] = Record{RecordID: "d"}
	store.records["e"] = Record{RecordID: "e", UploadTimestamp: "2023-12-31T23:59:59.999999Z"}

	set, err := NewReader(store).ListAll(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(set.Records))
	for _, rec := range set.Records {
		ids = append(ids, rec.RecordID)
	}
	assert.Equal(t, []string{"c", "a", "e", "b", "d"}, ids)
}

func TestListAllDiscardsPartialResultsOnFailure(t *testing.T) {
	store := newMemoryStore(10)
	seed(store, 25, time.Now())
	store.scanErr = errors.New("connection reset")
	store.failScanAt = 2

	set, err := NewReader(store).ListAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.scanErr)
	assert.Contains(t, err.Error(), "scan metadata")
	assert.Equal(t, RecordSet{}, set)
}

type stuckStore struct{ memoryStore }

func (s *stuckStore) Scan(ctx context.Context, token string) (Page, error) {
	return Page{Records: []Record{{RecordID: "x"}}, NextToken: "same"}, nil
}

func TestListAllRejectsNonAdvancingToken(t *testing.T) {
	_, err := NewReader(&stuckStore{}).ListAll(context.Background())
	assert.ErrorIs(t, err, ErrMalformedPage)
}

func TestPagerIsSequential(t *testing.T) {
	store := newMemoryStore(3)
	seed(store, 7, time.Now())

	pager := NewPager(store)
	var sizes []int
	for pager.HasMorePages() {
		page, err := pager.NextPage(context.Background())
		require.NoError(t, err)
		sizes = append(sizes, len(page.Records))
	}

	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Equal(t, []string{"", "uploads/file-002.txt", "uploads/file-005.txt"}, store.scans)

	_, err := pager.NextPage(context.Background())
	assert.Error(t, err)
}
