package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sriram-PR/pydoc-parser/pkg/parse"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// ForcedEncoding is the text encoding applied to every fetched page regardless of response headers
const ForcedEncoding = "utf-8"

// Page is one fetched resource. It is owned by the fetch call that produced it and discarded after parsing
type Page struct {
	URL       string // Final URL the content was read from
	Content   []byte
	Encoding  string // Always ForcedEncoding
	FromCache bool   // Served from the response cache without touching the network
}

// Text returns the page content decoded as UTF-8, replacing invalid byte sequences
func (p *Page) Text() string {
	return strings.ToValidUTF8(string(p.Content), "�")
}

// LinkRef is an anchor's display text and its raw (possibly relative) href
type LinkRef struct {
	Text string
	Href string
}

// Resolve returns the absolute URL of the link against base.
// Links must never be dereferenced without going through Resolve.
func (l LinkRef) Resolve(base string) (string, error) {
	return parse.ResolveReference(base, l.Href)
}

// Record is a fixed-arity row of string fields
type Record []string

// ResultSet is a header record followed by data records of identical arity
type ResultSet struct {
	Header Record
	Rows   []Record
}

// NewResultSet creates an empty result set with the given column titles
func NewResultSet(header ...string) *ResultSet {
	return &ResultSet{Header: Record(header)}
}

// Append adds a data record, rejecting records whose arity differs from the header
func (rs *ResultSet) Append(fields ...string) error {
	if len(fields) != len(rs.Header) {
		return fmt.Errorf("%w: got %d fields, header has %d", utils.ErrArityMismatch, len(fields), len(rs.Header))
	}
	rs.Rows = append(rs.Rows, Record(fields))
	return nil
}

// Len returns the number of data records (header excluded)
func (rs *ResultSet) Len() int {
	return len(rs.Rows)
}

// Records returns the header followed by every data record
func (rs *ResultSet) Records() []Record {
	out := make([]Record, 0, len(rs.Rows)+1)
	out = append(out, rs.Header)
	return append(out, rs.Rows...)
}

// CachedResponse is the persisted form of a successful fetch in the response cache
type CachedResponse struct {
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Body       []byte    `json:"body"`
	FetchedAt  time.Time `json:"fetched_at"`
}
