package orchestrate

import (
	"fmt"
	"strings"

	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// Mode names one crawl target
type Mode string

const (
	ModeWhatsNew       Mode = "whats-new"
	ModeLatestVersions Mode = "latest-versions"
	ModeDownload       Mode = "download"
	ModePEP            Mode = "pep"
)

// Modes lists every supported mode in help order
var Modes = []Mode{ModeWhatsNew, ModeLatestVersions, ModeDownload, ModePEP}

// ModeNames returns Modes as strings
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return names
}

// ParseMode checks that name is a supported mode
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: '%s'. Available modes: %s", utils.ErrUnknownMode, name, strings.Join(ModeNames(), ", "))
}

// ProducesResultSet reports whether the mode yields rows for the output controller
func (m Mode) ProducesResultSet() bool {
	return m != ModeDownload
}
