package process

import (
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/models"
)

// Mismatch records a proposal whose page status is not expected for its index letter
type Mismatch struct {
	URL      string
	Code     models.StatusCode
	Found    string
	Expected []string
}

// Reconciler compares index status letters to authoritative page statuses.
// Mismatches are logged and kept; they never stop processing.
type Reconciler struct {
	log        *logrus.Entry
	mismatches []Mismatch
}

// NewReconciler creates a Reconciler for one run
func NewReconciler(log *logrus.Entry) *Reconciler {
	return &Reconciler{log: log}
}

// Check reports whether found is expected for code, logging a warning when it is not
func (r *Reconciler) Check(url string, code models.StatusCode, found string) bool {
	if code.Accepts(found) {
		return true
	}
	m := Mismatch{URL: url, Code: code, Found: found, Expected: code.Expected()}
	r.mismatches = append(r.mismatches, m)

	entry := r.log.WithFields(logrus.Fields{
		"url":      url,
		"code":     code.String(),
		"found":    found,
		"expected": m.Expected,
	})
	if !code.IsValid() {
		entry.Warn("Unknown status letter on proposal index")
		return false
	}
	entry.Warn("Status mismatch")
	return false
}

// Mismatches returns every mismatch seen so far in the order they were found
func (r *Reconciler) Mismatches() []Mismatch {
	return r.mismatches
}
