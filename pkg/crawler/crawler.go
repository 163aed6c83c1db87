// FILE: pkg/crawler/crawler.go
package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/config"
	"github.com/Sriram-PR/pydoc-parser/pkg/fetch"
	"github.com/Sriram-PR/pydoc-parser/pkg/locate"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/process"
	"github.com/Sriram-PR/pydoc-parser/pkg/progress"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// Crawler runs the per-target pipelines: index fetch, per-item fetch, extraction,
// reconciliation and result-set assembly. Fetches are strictly sequential.
type Crawler struct {
	log      *logrus.Entry
	cfg      *config.AppConfig
	fetcher  fetch.PageFetcher
	progress progress.Reporter
}

// NewCrawler creates a Crawler. A nil reporter disables progress output.
func NewCrawler(cfg *config.AppConfig, fetcher fetch.PageFetcher, reporter progress.Reporter, log *logrus.Entry) *Crawler {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Crawler{
		log:      log.WithField("component", "crawler"),
		cfg:      cfg,
		fetcher:  fetcher,
		progress: reporter,
	}
}

// fetchDocument fetches rawURL and parses it as UTF-8 HTML.
// The returned page carries the final URL, which is the base for resolving links on it.
func (c *Crawler) fetchDocument(ctx context.Context, rawURL string) (*models.Page, *goquery.Document, *locate.Locator, error) {
	page, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Text()))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: parsing HTML from '%s': %w", utils.ErrParsing, page.URL, err)
	}
	return page, doc, locate.New(page.URL, c.log), nil
}

// abort logs a fetch failure that ends the current target without a result
func (c *Crawler) abort(target, rawURL string, err error) error {
	if errors.Is(err, utils.ErrUnavailable) {
		c.log.WithFields(logrus.Fields{"target": target, "url": rawURL}).Warn("Page unavailable, no result for this run")
	}
	return err
}

// WhatsNew lists every release-notes article with its title and editors.
// Any article that cannot be fetched aborts the whole target.
func (c *Crawler) WhatsNew(ctx context.Context) (*models.ResultSet, error) {
	const target = "whats-new"
	indexURL, err := c.cfg.WhatsNewURL()
	if err != nil {
		return nil, err
	}

	index, doc, loc, err := c.fetchDocument(ctx, indexURL)
	if err != nil {
		return nil, c.abort(target, indexURL, err)
	}
	links, err := process.WhatsNewLinks(loc, doc)
	if err != nil {
		return nil, err
	}

	rs := models.NewResultSet(process.WhatsNewHeader...)
	c.progress.Start("Parsing release notes", len(links))
	defer c.progress.Finish()

	for _, link := range links {
		articleURL, err := link.Resolve(index.URL)
		if err != nil {
			return nil, err
		}
		_, articleDoc, articleLoc, err := c.fetchDocument(ctx, articleURL)
		if err != nil {
			return nil, c.abort(target, articleURL, err)
		}
		article, err := process.WhatsNewDetail(articleLoc, articleDoc)
		if err != nil {
			return nil, err
		}
		if err := rs.Append(articleURL, article.Title, article.Editors); err != nil {
			return nil, err
		}
		c.progress.Advance(link.Text)
	}

	c.log.WithField("articles", rs.Len()).Info("Release notes parsed")
	return rs, nil
}

// LatestVersions lists the documentation versions from the root page's version switcher
func (c *Crawler) LatestVersions(ctx context.Context) (*models.ResultSet, error) {
	const target = "latest-versions"
	page, doc, loc, err := c.fetchDocument(ctx, c.cfg.MainDocURL)
	if err != nil {
		return nil, c.abort(target, c.cfg.MainDocURL, err)
	}
	links, err := process.VersionLinks(loc, doc)
	if err != nil {
		return nil, err
	}

	rs := models.NewResultSet(process.LatestVersionsHeader...)
	for _, link := range links {
		docURL, err := link.Resolve(page.URL)
		if err != nil {
			return nil, err
		}
		version, status := process.ParseVersionText(link.Text)
		if err := rs.Append(docURL, version, status); err != nil {
			return nil, err
		}
	}

	c.log.WithField("versions", rs.Len()).Info("Version list parsed")
	return rs, nil
}

// PEP counts proposals by the status stated on each proposal's own page, reconciling it with
// the status letter shown on the index. Any proposal page that cannot be fetched aborts the target.
func (c *Crawler) PEP(ctx context.Context) (*models.ResultSet, error) {
	const target = "pep"
	index, doc, loc, err := c.fetchDocument(ctx, c.cfg.PEPURL)
	if err != nil {
		return nil, c.abort(target, c.cfg.PEPURL, err)
	}
	rows, err := process.PEPIndexRows(loc, doc)
	if err != nil {
		return nil, err
	}

	reconciler := process.NewReconciler(c.log)
	counter := process.NewStatusCounter()
	c.progress.Start("Checking proposals", len(rows))
	defer c.progress.Finish()

	for _, row := range rows {
		pepURL, err := row.Link.Resolve(index.URL)
		if err != nil {
			return nil, err
		}
		_, pepDoc, pepLoc, err := c.fetchDocument(ctx, pepURL)
		if err != nil {
			return nil, c.abort(target, pepURL, err)
		}
		status, err := process.PEPStatus(pepLoc, pepDoc)
		if err != nil {
			return nil, err
		}
		reconciler.Check(pepURL, row.Code, status)
		counter.Add(status)
		c.progress.Advance(row.Link.Text)
	}

	c.log.WithFields(logrus.Fields{
		"proposals":  counter.Total(),
		"mismatches": len(reconciler.Mismatches()),
	}).Info("Proposal statuses counted")
	return counter.ResultSet(), nil
}
