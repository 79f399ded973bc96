package core

import (
	"sort"
	"strings"
)

type ResolutionRule int

const (
	RuleExactPath ResolutionRule = iota
	RuleHomeFlag
	RuleRootPath
	RuleHomeName
	RuleFirstPage
	RuleNoPage
)

func (r ResolutionRule) String() string {
	switch r {
	case RuleExactPath:
		return "exact-path"
	case RuleHomeFlag:
		return "home-flag"
	case RuleRootPath:
		return "root-path"
	case RuleHomeName:
		return "home-name"
	case RuleFirstPage:
		return "first-page"
	default:
		return "no-page"
	}
}

type PageDecision struct {
	Rule  ResolutionRule
	Index int
}

// DecidePage picks the page a request path resolves to. An empty path skips
// the exact match step.
func DecidePage(pages []PageDefinition, path string) PageDecision {
	if len(pages) == 0 {
		return PageDecision{Rule: RuleNoPage, Index: -1}
	}

	if strings.TrimSpace(path) != "" {
		want := NormalizePath(path)
		for i, p := range pages {
			if NormalizePath(p.Path) == want {
				return PageDecision{Rule: RuleExactPath, Index: i}
			}
		}
	}

	for i, p := range pages {
		if p.IsHomePage {
			return PageDecision{Rule: RuleHomeFlag, Index: i}
		}
	}

	for i, p := range pages {
		if NormalizePath(p.Path) == "/" {
			return PageDecision{Rule: RuleRootPath, Index: i}
		}
	}

	for i, p := range pages {
		if strings.EqualFold(strings.TrimSpace(p.Name), "home") {
			return PageDecision{Rule: RuleHomeName, Index: i}
		}
	}

	return PageDecision{Rule: RuleFirstPage, Index: 0}
}

// ResolvePage returns the page for path, or ErrNoPage when the document has
// no pages at all.
func ResolvePage(doc Document, path string) (PageDefinition, error) {
	decision := DecidePage(doc.Pages, path)
	if decision.Rule == RuleNoPage {
		return PageDefinition{}, &RenderError{
			Kind:    ResolutionFailure,
			Stage:   StageIdle,
			Message: "no page for " + NormalizePath(path),
			Err:     ErrNoPage,
		}
	}
	return doc.Pages[decision.Index], nil
}

// SortComponents returns the components ordered by OrderIndex. Ties keep
// their original relative order. The input slice is not modified.
func SortComponents(components []ComponentDefinition) []ComponentDefinition {
	out := make([]ComponentDefinition, len(components))
	copy(out, components)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}
