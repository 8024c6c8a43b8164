package warn

import (
	"context"
	"net/http"
	"time"
)

// Document is a fetched source artifact handed to the extraction layer.
type Document struct {
	URL         string
	FinalURL    string
	StatusCode  int
	Headers     http.Header
	Body        []byte
	FetchedAt   time.Time
	UsedBrowser bool
}

// Extractor converts a raw document into a RawTable. Implementations
// never fail on a structural miss: they log and return an empty table.
type Extractor interface {
	Extract(ctx context.Context, doc []byte) (RawTable, error)
}

// DocumentFetcher acquires the raw bytes behind a URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (Document, error)
}

// EntrySink consumes output entries, one stream per source.
type EntrySink interface {
	Write(ctx context.Context, entry Entry) error
	Close() error
}

// EntryStore persists entries in a database.
type EntryStore interface {
	SaveEntry(ctx context.Context, entry Entry) error
	Close()
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes run events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Queue provides enqueue/dequeue semantics for source runs.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Hasher computes digests for deduplication/integrity.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces entry IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
