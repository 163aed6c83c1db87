// Package locate finds nodes in parsed HTML documents and reports missing markup as TagNotFoundError.
package locate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// Predicate decides whether a candidate node matches
type Predicate interface {
	Match(s *goquery.Selection) bool
	String() string
}

type attrEquals struct {
	name, value string
}

// AttrEquals matches nodes whose attribute equals value.
// For "class" the value only has to be one of the node's classes.
func AttrEquals(name, value string) Predicate {
	return attrEquals{name: name, value: value}
}

func (p attrEquals) Match(s *goquery.Selection) bool {
	got, ok := s.Attr(p.name)
	if !ok {
		return false
	}
	if p.name == "class" {
		for _, class := range strings.Fields(got) {
			if class == p.value {
				return true
			}
		}
	}
	return got == p.value
}

func (p attrEquals) String() string {
	return fmt.Sprintf("[%s=%q]", p.name, p.value)
}

type attrMatches struct {
	name string
	re   *regexp.Regexp
}

// AttrMatches matches nodes whose attribute value matches re
func AttrMatches(name string, re *regexp.Regexp) Predicate {
	return attrMatches{name: name, re: re}
}

func (p attrMatches) Match(s *goquery.Selection) bool {
	got, ok := s.Attr(p.name)
	return ok && p.re.MatchString(got)
}

func (p attrMatches) String() string {
	return fmt.Sprintf("[%s~=/%s/]", p.name, p.re)
}

type funcPredicate struct {
	desc string
	fn   func(*goquery.Selection) bool
}

// Func wraps an arbitrary boolean test over a node. desc is used in logs and errors.
func Func(desc string, fn func(*goquery.Selection) bool) Predicate {
	return funcPredicate{desc: desc, fn: fn}
}

func (p funcPredicate) Match(s *goquery.Selection) bool { return p.fn(s) }
func (p funcPredicate) String() string                  { return p.desc }

// TagWithText matches <tag> nodes whose text contains substr (case-sensitive)
func TagWithText(tag, substr string) Predicate {
	return Func(fmt.Sprintf("<%s> containing %q", tag, substr), func(s *goquery.Selection) bool {
		return goquery.NodeName(s) == tag && strings.Contains(s.Text(), substr)
	})
}

// TagNotFoundError reports that the expected markup is absent from a page
type TagNotFoundError struct {
	Tag       string // Empty for predicate-only lookups
	Predicate string
	Page      string
}

func (e *TagNotFoundError) Error() string {
	target := e.Tag
	if target == "" {
		target = "node"
	}
	if e.Predicate != "" {
		target += " " + e.Predicate
	}
	return fmt.Sprintf("%v: %s on %s", utils.ErrTagNotFound, target, e.Page)
}

// Is lets errors.Is(err, utils.ErrTagNotFound) match
func (e *TagNotFoundError) Is(target error) bool {
	return target == utils.ErrTagNotFound
}

// Locator performs lookups on documents fetched from one page
type Locator struct {
	page string
	log  *logrus.Entry
}

// New creates a Locator whose failures are attributed to page
func New(page string, log *logrus.Entry) *Locator {
	return &Locator{page: page, log: log}
}

// Page returns the URL the locator reports failures against
func (l *Locator) Page() string {
	return l.page
}

// Find returns the first descendant of scope (in document order) named tag and satisfying all preds
func (l *Locator) Find(scope *goquery.Selection, tag string, preds ...Predicate) (*goquery.Selection, error) {
	found := l.FindAll(scope, tag, preds...).First()
	if found.Length() == 0 {
		return nil, l.notFound(tag, describe(preds))
	}
	return found, nil
}

// FindAll returns every matching descendant in document order. An empty selection is not an error.
func (l *Locator) FindAll(scope *goquery.Selection, tag string, preds ...Predicate) *goquery.Selection {
	if scope == nil {
		return &goquery.Selection{}
	}
	return scope.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, p := range preds {
			if !p.Match(s) {
				return false
			}
		}
		return true
	})
}

// FindFunc returns the first descendant of scope, in document order, for which pred holds
func (l *Locator) FindFunc(scope *goquery.Selection, pred Predicate) (*goquery.Selection, error) {
	if scope != nil {
		found := scope.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return pred.Match(s)
		}).First()
		if found.Length() > 0 {
			return found, nil
		}
	}
	return nil, l.notFound("", pred.String())
}

// NextSibling returns the first following sibling of sel named tag
func (l *Locator) NextSibling(sel *goquery.Selection, tag string) (*goquery.Selection, error) {
	if sel != nil {
		found := sel.NextAllFiltered(tag).First()
		if found.Length() > 0 {
			return found, nil
		}
	}
	return nil, l.notFound(tag, "(next sibling)")
}

func (l *Locator) notFound(tag, predicate string) error {
	err := &TagNotFoundError{Tag: tag, Predicate: predicate, Page: l.page}
	l.log.WithFields(logrus.Fields{
		"tag":       tag,
		"predicate": predicate,
		"page":      l.page,
	}).Error("Tag not found")
	return err
}

func describe(preds []Predicate) string {
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, "")
}
