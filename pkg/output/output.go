// FILE: pkg/output/output.go
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// Mode selects how a result set is rendered
type Mode string

const (
	ModePlain  Mode = ""
	ModePretty Mode = "pretty"
	ModeFile   Mode = "file"
	ModeChart  Mode = "chart"
)

// FileTimeLayout is the timestamp layout used in result file names
const FileTimeLayout = "2006-01-02_15-04-05"

// Modes lists the selectable non-default modes, in help order
var Modes = []Mode{ModePretty, ModeFile, ModeChart}

// ParseMode converts a flag value into a Mode. The empty string selects plain output.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModePlain, ModePretty, ModeFile, ModeChart:
		return m, nil
	}
	return "", fmt.Errorf("unknown output mode %q (want one of pretty, file, chart)", s)
}

// Controller renders result sets to the console or to files under a results directory
type Controller struct {
	out        io.Writer
	resultsDir string
	log        *logrus.Entry
	now        func() time.Time
}

// NewController creates a Controller writing console output to out and files into resultsDir
func NewController(out io.Writer, resultsDir string, log *logrus.Entry) *Controller {
	return &Controller{
		out:        out,
		resultsDir: resultsDir,
		log:        log.WithField("component", "output"),
		now:        time.Now,
	}
}

// Render writes rs in the given mode. name is the crawl mode and prefixes any file written.
// Returns the saved path for file and chart modes, "" otherwise.
func (c *Controller) Render(name string, mode Mode, rs *models.ResultSet) (string, error) {
	switch mode {
	case ModePretty:
		c.pretty(rs)
		return "", nil
	case ModeFile:
		return c.saveFile(name, "csv", func(w io.Writer) error { return writeCSV(w, rs) })
	case ModeChart:
		return c.saveFile(name, "html", func(w io.Writer) error { return renderChart(w, name, rs) })
	default:
		return "", c.plain(rs)
	}
}

// plain prints every record on its own line with fields separated by single spaces
func (c *Controller) plain(rs *models.ResultSet) error {
	for _, r := range rs.Records() {
		if _, err := fmt.Fprintln(c.out, strings.Join(r, " ")); err != nil {
			return err
		}
	}
	return nil
}

// pretty prints a left-aligned table with the header row kept as written
func (c *Controller) pretty(rs *models.ResultSet) {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(rs.Header))
	configs := make([]table.ColumnConfig, len(rs.Header))
	for i, title := range rs.Header {
		header[i] = title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, r := range rs.Rows {
		row := make(table.Row, len(r))
		for i, field := range r {
			row[i] = field
		}
		t.AppendRow(row)
	}
	t.Render()
}

// saveFile creates {name}_{timestamp}.{ext} in the results directory and fills it with write
func (c *Controller) saveFile(name, ext string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(c.resultsDir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating results directory '%s': %w", utils.ErrFilesystem, c.resultsDir, err)
	}
	filename := fmt.Sprintf("%s_%s.%s", utils.SanitizeFilename(name), c.now().Format(FileTimeLayout), ext)
	path := filepath.Join(c.resultsDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: creating '%s': %w", utils.ErrFilesystem, path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: closing '%s': %w", utils.ErrFilesystem, path, err)
	}

	c.log.WithField("path", path).Info("Results saved")
	return path, nil
}

// writeCSV writes the header and every data record as comma-separated values.
// Every field is quoted and lines end with "\n".
func writeCSV(w io.Writer, rs *models.ResultSet) error {
	for _, r := range rs.Records() {
		fields := make([]string, len(r))
		for i, f := range r {
			fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, strings.Join(fields, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
