package metadata

import (
	"context"
	"fmt"
	"sort"

	"github.com/abduss/filemeta/internal/metrics"
)

// Pager walks a Store scan one page at a time. Each page is requested only
// after the previous page's continuation token is known.
type Pager struct {
	store     Store
	token     string
	firstPage bool
}

// NewPager starts a full-table scan.
func NewPager(store Store) *Pager {
	return &Pager{store: store, firstPage: true}
}

// HasMorePages reports whether NextPage should be called again.
func (p *Pager) HasMorePages() bool {
	return p.firstPage || p.token != ""
}

// NextPage fetches the next page and advances the continuation token.
func (p *Pager) NextPage(ctx context.Context) (Page, error) {
	if !p.HasMorePages() {
		return Page{}, fmt.Errorf("no more pages")
	}

	page, err := p.store.Scan(ctx, p.token)
	if err != nil {
		return Page{}, fmt.Errorf("scan metadata: %w", err)
	}
	metrics.ScanPages.Inc()

	if page.NextToken != "" && page.NextToken == p.token {
		return Page{}, fmt.Errorf("%w: continuation token %q did not advance", ErrMalformedPage, page.NextToken)
	}

	p.firstPage = false
	p.token = page.NextToken
	return page, nil
}

// Reader lists stored metadata records.
type Reader struct {
	store Store
}

// NewReader constructs a Reader.
func NewReader(store Store) *Reader {
	return &Reader{store: store}
}

// ListAll returns every record across all pages, most recent upload first.
// Any page failure discards what was accumulated.
func (r *Reader) ListAll(ctx context.Context) (RecordSet, error) {
	records := make([]Record, 0)

	pager := NewPager(r.store)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return RecordSet{}, err
		}
		records = append(records, page.Records...)
	}

	SortByRecency(records)

	return RecordSet{
		Count:   len(records),
		Records: records,
	}, nil
}

// SortByRecency orders records by upload timestamp, newest first. Records
// without a timestamp compare as "" and therefore come last.
func SortByRecency(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadTimestamp > records[j].UploadTimestamp
	})
}
