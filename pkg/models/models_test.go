package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

func TestResultSet_Append(t *testing.T) {
	rs := NewResultSet("Status", "Count")

	require.NoError(t, rs.Append("Final", "3"))
	err := rs.Append("Final")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrArityMismatch))

	assert.Equal(t, 1, rs.Len())
	records := rs.Records()
	require.Len(t, records, 2)
	assert.Equal(t, Record{"Status", "Count"}, records[0])
	assert.Equal(t, Record{"Final", "3"}, records[1])
	for _, r := range records {
		assert.Len(t, r, len(rs.Header))
	}
}

func TestResultSet_EmptyHasHeader(t *testing.T) {
	rs := NewResultSet("a", "b", "c")
	records := rs.Records()
	require.Len(t, records, 1)
	assert.Equal(t, Record{"a", "b", "c"}, records[0])
}

func TestPage_TextForcesUTF8(t *testing.T) {
	p := &Page{Content: []byte("What\xe2\x80\x99s New \xff"), Encoding: ForcedEncoding}
	assert.Equal(t, "What’s New �", p.Text())
}

func TestLinkRef_Resolve(t *testing.T) {
	link := LinkRef{Text: "PEP 8", Href: "pep-0008/"}
	got, err := link.Resolve("https://peps.python.org/")
	require.NoError(t, err)
	assert.Equal(t, "https://peps.python.org/pep-0008/", got)
}
