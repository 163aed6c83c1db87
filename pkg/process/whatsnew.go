package process

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/pydoc-parser/pkg/locate"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
)

// WhatsNewHeader is the column layout of the whats-new result set
var WhatsNewHeader = []string{"Article link", "Title", "Editor, Author"}

// WhatsNewArticle holds the fields read from one release-notes page
type WhatsNewArticle struct {
	Title   string
	Editors string
}

// WhatsNewLinks returns one link per top-level entry of the release-notes table of contents
func WhatsNewLinks(loc *locate.Locator, doc *goquery.Document) ([]models.LinkRef, error) {
	section, err := loc.Find(doc.Selection, "section", locate.AttrEquals("id", "what-s-new-in-python"))
	if err != nil {
		return nil, err
	}
	wrapper, err := loc.Find(section, "div", locate.AttrEquals("class", "toctree-wrapper"))
	if err != nil {
		return nil, err
	}

	items := loc.FindAll(wrapper, "li", locate.AttrEquals("class", "toctree-l1"))
	links := make([]models.LinkRef, 0, items.Length())
	for i := range items.Length() {
		a, err := loc.Find(items.Eq(i), "a")
		if err != nil {
			return nil, err
		}
		links = append(links, models.LinkRef{Text: a.Text(), Href: a.AttrOr("href", "")})
	}
	return links, nil
}

// WhatsNewDetail reads the first heading and the first definition list of a release-notes page.
// Every newline in the definition list text becomes a space.
func WhatsNewDetail(loc *locate.Locator, doc *goquery.Document) (WhatsNewArticle, error) {
	h1, err := loc.Find(doc.Selection, "h1")
	if err != nil {
		return WhatsNewArticle{}, err
	}
	dl, err := loc.Find(doc.Selection, "dl")
	if err != nil {
		return WhatsNewArticle{}, err
	}
	return WhatsNewArticle{
		Title:   h1.Text(),
		Editors: strings.ReplaceAll(dl.Text(), "\n", " "),
	}, nil
}
