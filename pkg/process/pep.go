package process

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/pydoc-parser/pkg/locate"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
)

// PEPHeader is the column layout of the pep result set
var PEPHeader = []string{"Status", "Count"}

// PEPIndexRow is one row of the numerical index
type PEPIndexRow struct {
	Code models.StatusCode
	Link models.LinkRef
}

// PEPIndexRows reads every row of the numerical index table
func PEPIndexRows(loc *locate.Locator, doc *goquery.Document) ([]PEPIndexRow, error) {
	section, err := loc.Find(doc.Selection, "section", locate.AttrEquals("id", "numerical-index"))
	if err != nil {
		return nil, err
	}
	tbody, err := loc.Find(section, "tbody")
	if err != nil {
		return nil, err
	}

	trs := loc.FindAll(tbody, "tr")
	rows := make([]PEPIndexRow, 0, trs.Length())
	for i := range trs.Length() {
		tr := trs.Eq(i)
		abbr, err := loc.Find(tr, "abbr")
		if err != nil {
			return nil, err
		}
		a, err := loc.Find(tr, "a")
		if err != nil {
			return nil, err
		}
		rows = append(rows, PEPIndexRow{
			Code: StatusCodeFromAbbr(abbr.Text()),
			Link: models.LinkRef{Text: a.Text(), Href: a.AttrOr("href", "")},
		})
	}
	return rows, nil
}

// StatusCodeFromAbbr extracts the status letter from an index abbreviation.
// The abbreviation is the type letter followed by the status letter ("SF", "PA"); a lone type
// letter ("I") means the proposal is unlabeled.
func StatusCodeFromAbbr(text string) models.StatusCode {
	r := []rune(strings.TrimSpace(text))
	if len(r) <= 1 {
		return models.StatusCodeUnlabeled
	}
	return models.StatusCode(string(r[1:]))
}

// PEPStatus reads the authoritative status from a proposal page's field list
func PEPStatus(loc *locate.Locator, doc *goquery.Document) (string, error) {
	dt, err := loc.FindFunc(doc.Selection, locate.TagWithText("dt", "Status"))
	if err != nil {
		return "", err
	}
	dd, err := loc.NextSibling(dt, "dd")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(dd.Text()), nil
}
