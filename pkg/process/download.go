package process

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/pydoc-parser/pkg/locate"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
)

// ArchivePattern matches the href of the A4 PDF documentation archive
var ArchivePattern = regexp.MustCompile(`.+pdf-a4\.zip$`)

// ArchiveLink finds the A4 PDF archive link in the downloads table
func ArchiveLink(loc *locate.Locator, doc *goquery.Document) (models.LinkRef, error) {
	main, err := loc.Find(doc.Selection, "div", locate.AttrEquals("role", "main"))
	if err != nil {
		return models.LinkRef{}, err
	}
	table, err := loc.Find(main, "table", locate.AttrEquals("class", "docutils"))
	if err != nil {
		return models.LinkRef{}, err
	}
	a, err := loc.Find(table, "a", locate.AttrMatches("href", ArchivePattern))
	if err != nil {
		return models.LinkRef{}, err
	}
	return models.LinkRef{Text: a.Text(), Href: a.AttrOr("href", "")}, nil
}
