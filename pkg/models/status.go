package models

import (
	"fmt"
	"slices"
)

// StatusCode is the one-letter proposal status shown on the numerical index
type StatusCode string

const (
	StatusCodeUnlabeled   StatusCode = "" // No status letter next to the type letter
	StatusCodeAccepted    StatusCode = "A"
	StatusCodeDeferred    StatusCode = "D"
	StatusCodeFinal       StatusCode = "F"
	StatusCodeProvisional StatusCode = "P"
	StatusCodeRejected    StatusCode = "R"
	StatusCodeSuperseded  StatusCode = "S"
	StatusCodeWithdrawn   StatusCode = "W"
)

// AllStatusCodes lists every known status code in table order
var AllStatusCodes = []StatusCode{
	StatusCodeAccepted,
	StatusCodeDeferred,
	StatusCodeFinal,
	StatusCodeProvisional,
	StatusCodeRejected,
	StatusCodeSuperseded,
	StatusCodeWithdrawn,
	StatusCodeUnlabeled,
}

var expectedStatus = map[StatusCode][]string{
	StatusCodeAccepted:    {"Active", "Accepted"},
	StatusCodeDeferred:    {"Deferred"},
	StatusCodeFinal:       {"Final"},
	StatusCodeProvisional: {"Provisional"},
	StatusCodeRejected:    {"Rejected"},
	StatusCodeSuperseded:  {"Superseded"},
	StatusCodeWithdrawn:   {"Withdrawn"},
	StatusCodeUnlabeled:   {"Draft", "Active"},
}

// String implements fmt.Stringer for logging
func (c StatusCode) String() string {
	if c == StatusCodeUnlabeled {
		return "unlabeled"
	}
	return string(c)
}

// IsValid returns true if the code has an entry in the expected-status table
func (c StatusCode) IsValid() bool {
	_, ok := expectedStatus[c]
	return ok
}

// Expected returns a copy of the full status names acceptable for the code, nil for unknown codes
func (c StatusCode) Expected() []string {
	return slices.Clone(expectedStatus[c])
}

// Accepts reports whether status is one of the expected names for the code
func (c StatusCode) Accepts(status string) bool {
	return slices.Contains(expectedStatus[c], status)
}

// CheckExpectedStatus verifies that the table covers exactly AllStatusCodes and that no entry is empty.
// Called once at startup.
func CheckExpectedStatus() error {
	if len(expectedStatus) != len(AllStatusCodes) {
		return fmt.Errorf("expected-status table has %d entries, %d codes are declared", len(expectedStatus), len(AllStatusCodes))
	}
	for _, code := range AllStatusCodes {
		names, ok := expectedStatus[code]
		if !ok {
			return fmt.Errorf("expected-status table is missing code %q", code)
		}
		if len(names) == 0 {
			return fmt.Errorf("expected-status table has no names for code %q", code)
		}
	}
	return nil
}
