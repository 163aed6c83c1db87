package process

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/pydoc-parser/pkg/locate"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// LatestVersionsHeader is the column layout of the latest-versions result set
var LatestVersionsHeader = []string{"Documentation link", "Version", "Status"}

// AllVersionsMarker identifies the sidebar list holding the version switcher
const AllVersionsMarker = "All versions"

var versionPattern = regexp.MustCompile(`Python (?P<version>\d\.\d+) \((?P<status>.*)\)`)

// ParseVersionText splits "Python 3.13 (stable)" into "3.13" and "stable".
// Text that does not match is returned whole as the version with an empty status.
func ParseVersionText(text string) (version, status string) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return text, ""
	}
	return m[versionPattern.SubexpIndex("version")], m[versionPattern.SubexpIndex("status")]
}

// VersionLinks returns the anchors of the first sidebar list whose text contains AllVersionsMarker.
// A page without such a list yields utils.ErrNoVersionsFound.
func VersionLinks(loc *locate.Locator, doc *goquery.Document) ([]models.LinkRef, error) {
	sidebar, err := loc.Find(doc.Selection, "div", locate.AttrEquals("class", "sphinxsidebarwrapper"))
	if err != nil {
		return nil, err
	}

	lists := loc.FindAll(sidebar, "ul")
	for i := range lists.Length() {
		ul := lists.Eq(i)
		if !strings.Contains(ul.Text(), AllVersionsMarker) {
			continue
		}
		anchors := loc.FindAll(ul, "a")
		links := make([]models.LinkRef, 0, anchors.Length())
		anchors.Each(func(_ int, a *goquery.Selection) {
			links = append(links, models.LinkRef{Text: a.Text(), Href: a.AttrOr("href", "")})
		})
		return links, nil
	}
	return nil, fmt.Errorf("%w: no sidebar list containing %q on %s", utils.ErrNoVersionsFound, AllVersionsMarker, loc.Page())
}
