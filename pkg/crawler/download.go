package crawler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/parse"
	"github.com/Sriram-PR/pydoc-parser/pkg/process"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// DownloadResult describes the archive saved by Download
type DownloadResult struct {
	URL    string
	Path   string
	Size   int
	SHA256 string
}

// Download finds the A4 PDF archive on the downloads page and saves it into the downloads
// directory under the last segment of its URL. It produces no result set.
func (c *Crawler) Download(ctx context.Context) (*DownloadResult, error) {
	const target = "download"
	pageURL, err := c.cfg.DownloadPageURL()
	if err != nil {
		return nil, err
	}

	page, doc, loc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, c.abort(target, pageURL, err)
	}
	link, err := process.ArchiveLink(loc, doc)
	if err != nil {
		return nil, err
	}
	archiveURL, err := link.Resolve(page.URL)
	if err != nil {
		return nil, err
	}

	archive, err := c.fetcher.Fetch(ctx, archiveURL)
	if err != nil {
		return nil, c.abort(target, archiveURL, err)
	}

	downloadsDir := c.cfg.DownloadsPath()
	if err := os.MkdirAll(downloadsDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating downloads directory '%s': %w", utils.ErrFilesystem, downloadsDir, err)
	}
	archivePath := filepath.Join(downloadsDir, utils.SanitizeFilename(parse.LastPathSegment(archiveURL)))
	if err := os.WriteFile(archivePath, archive.Content, 0644); err != nil {
		return nil, fmt.Errorf("%w: writing archive '%s': %w", utils.ErrFilesystem, archivePath, err)
	}

	result := &DownloadResult{
		URL:    archiveURL,
		Path:   archivePath,
		Size:   len(archive.Content),
		SHA256: utils.CalculateBytesSHA256(archive.Content),
	}
	c.log.WithFields(logrus.Fields{
		"url":    result.URL,
		"path":   result.Path,
		"bytes":  result.Size,
		"sha256": result.SHA256,
	}).Info("Archive saved")
	return result, nil
}
