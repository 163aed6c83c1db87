package storage

import (
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
)

// ResponseReader looks up cached responses
type ResponseReader interface {
	// Get returns the cached response for a normalized URL
	// found is false for missing or expired entries
	Get(normalizedURL string) (resp *models.CachedResponse, found bool, err error)
}

// ResponseWriter stores successful responses
type ResponseWriter interface {
	Put(normalizedURL string, resp *models.CachedResponse) error
}

// CacheAdmin handles lifecycle and administrative operations
type CacheAdmin interface {
	// Clear removes every cached response. It blocks until the drop is complete.
	Clear() error

	// Count returns the number of live (unexpired) entries
	Count() (int, error)

	// Close cleanly closes the database connection
	Close() error
}

// ResponseCache combines all cache interfaces for components that need full access
type ResponseCache interface {
	ResponseReader
	ResponseWriter
	CacheAdmin
}
