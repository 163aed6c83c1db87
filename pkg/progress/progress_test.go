package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_CountsItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewSpinner(&buf)

	p.Start("Processing PEPs", 3)
	p.Advance("pep-0001")
	p.Advance("pep-0008")
	assert.Equal(t, "Processing PEPs: 2/3", p.summary())
	p.Finish()

	// Restart resets the count
	p.Start("Processing release notes", 1)
	assert.Equal(t, "Processing release notes: 0/1", p.summary())
	p.Finish()
}

func TestSpinner_NonFileWriterDrawsNothing(t *testing.T) {
	var buf bytes.Buffer
	p := NewSpinner(&buf)
	p.Start("x", 1)
	p.Advance("a")
	p.Finish()
	assert.Empty(t, buf.String())
	assert.Equal(t, "x: 1/1", p.summary())
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	assert.NotPanics(t, func() {
		r.Start("x", 10)
		r.Advance("y")
		r.Finish()
	})
}
