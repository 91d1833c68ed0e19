// Package stage is the single definition of the transaction lifecycle: the
// stage enum, its canonical parser and the legal transition table.
package stage

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
)

type Stage string

const (
	Initiated            Stage = "initiated"
	AwaitingSignatures   Stage = "awaiting_signatures"
	DocsShared           Stage = "docs_shared"
	AwaitingVerification Stage = "awaiting_verification"
	Verified             Stage = "verified"
	UnderReview          Stage = "under_review"
	Finalized            Stage = "finalized"
	Rejected             Stage = "rejected"
)

// main path, in order. Rejected is reachable from several points and is not on it.
var order = []Stage{
	Initiated,
	AwaitingSignatures,
	DocsShared,
	AwaitingVerification,
	Verified,
	UnderReview,
	Finalized,
}

var labels = map[Stage]string{
	Initiated:            "Initiated",
	AwaitingSignatures:   "Awaiting Signatures",
	DocsShared:           "Docs Shared",
	AwaitingVerification: "Awaiting Verification",
	Verified:             "Verified",
	UnderReview:          "Under Review",
	Finalized:            "Finalized",
	Rejected:             "Rejected",
}

var fold = cases.Fold()

// Parse maps any spelling of a stage ("Docs Shared", "docs-shared",
// "DOCS_SHARED") to its canonical value.
func Parse(s string) (Stage, error) {
	normalized := fold.String(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	st := Stage(normalized)
	if _, ok := labels[st]; !ok {
		return "", apperr.Validation("unknown stage %q", s)
	}

	return st, nil
}

func (s Stage) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Label is the human-readable name, title-cased the way the stage is shown to parties.
func (s Stage) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}

	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

func (s Stage) IsTerminal() bool {
	return s == Finalized || s == Rejected
}

func (s Stage) String() string {
	return string(s)
}

func index(s Stage) int {
	for i, st := range order {
		if st == s {
			return i
		}
	}

	return -1
}

// Reached reports whether target has already been applied on the way to s.
func (s Stage) Reached(target Stage) bool {
	if s == target {
		return true
	}

	if s == Rejected || target == Rejected {
		return false
	}

	i, j := index(s), index(target)

	return i >= 0 && j >= 0 && j <= i
}

type TransitionError struct {
	From   Stage
	To     Stage
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return apperr.ErrValidation
}
