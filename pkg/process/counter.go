package process

import (
	"strconv"

	"github.com/Sriram-PR/pydoc-parser/pkg/models"
)

// TotalLabel names the synthetic row holding the sum of all counts
const TotalLabel = "Total"

// StatusCounter counts statuses in first-seen order. It belongs to a single run.
type StatusCounter struct {
	order  []string
	counts map[string]int
}

// NewStatusCounter creates an empty counter
func NewStatusCounter() *StatusCounter {
	return &StatusCounter{counts: make(map[string]int)}
}

// Add increments the count for status
func (c *StatusCounter) Add(status string) {
	if _, seen := c.counts[status]; !seen {
		c.order = append(c.order, status)
	}
	c.counts[status]++
}

// Count returns the count for status
func (c *StatusCounter) Count(status string) int {
	return c.counts[status]
}

// Statuses returns the counted statuses in first-seen order
func (c *StatusCounter) Statuses() []string {
	return append([]string(nil), c.order...)
}

// Total returns the sum of all counts
func (c *StatusCounter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// ResultSet renders the counter under PEPHeader with TotalLabel appended last
func (c *StatusCounter) ResultSet() *models.ResultSet {
	rs := models.NewResultSet(PEPHeader...)
	for _, status := range c.order {
		rs.Rows = append(rs.Rows, models.Record{status, strconv.Itoa(c.counts[status])})
	}
	rs.Rows = append(rs.Rows, models.Record{TotalLabel, strconv.Itoa(c.Total())})
	return rs
}
