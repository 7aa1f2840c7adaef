// Package filter decides which registered tests a run executes.
package filter

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Predicate decides whether a test with the given tags runs under the
// configured filter tags. Implementations must be pure.
type Predicate interface {
	Allow(filter, tags []string) bool
}

// Func adapts a function to a Predicate.
type Func func(filter, tags []string) bool

func (f Func) Allow(filter, tags []string) bool { return f(filter, tags) }

// Mode names a built-in predicate.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeAny     Mode = "any"
	ModeExclude Mode = "exclude"
	ModeGlob    Mode = "glob"
)

var Modes = []Mode{ModeAll, ModeAny, ModeExclude, ModeGlob}

// Built-in predicates.
var (
	// Always runs every test.
	Always Predicate = Func(func(_, _ []string) bool { return true })
	// All runs tests carrying every filter tag.
	All Predicate = Func(allOf)
	// Any runs tests carrying at least one filter tag.
	Any Predicate = Func(anyOf)
	// Exclude runs tests carrying none of the filter tags.
	Exclude Predicate = Func(noneOf)
	// Glob treats filter tags as doublestar patterns and runs tests where
	// every pattern matches at least one tag.
	Glob Predicate = Func(globAll)
)

// ForMode returns the predicate for mode. The empty mode selects All.
func ForMode(mode Mode) (Predicate, error) {
	switch mode {
	case ModeAll, "":
		return All, nil
	case ModeAny:
		return Any, nil
	case ModeExclude:
		return Exclude, nil
	case ModeGlob:
		return Glob, nil
	default:
		return nil, fmt.Errorf("invalid filter mode %q, must be one of %v", mode, Modes)
	}
}

func allOf(filter, tags []string) bool {
	for _, f := range filter {
		if !slices.Contains(tags, f) {
			return false
		}
	}
	return true
}

func anyOf(filter, tags []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if slices.Contains(tags, f) {
			return true
		}
	}
	return false
}

func noneOf(filter, tags []string) bool {
	for _, f := range filter {
		if slices.Contains(tags, f) {
			return false
		}
	}
	return true
}

func globAll(filter, tags []string) bool {
	for _, pattern := range filter {
		if !slices.ContainsFunc(tags, func(tag string) bool {
			match, err := doublestar.Match(pattern, tag)
			return err == nil && match
		}) {
			return false
		}
	}
	return true
}
