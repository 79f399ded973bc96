package core

import (
	"fmt"
	"sort"
)

// RepairHomePages keeps at most one home page: the first flagged page wins.
// It reports whether anything changed.
func RepairHomePages(doc Document) (Document, bool) {
	out := doc
	out.Pages = make([]PageDefinition, len(doc.Pages))
	copy(out.Pages, doc.Pages)

	seen := false
	changed := false
	for i := range out.Pages {
		if !out.Pages[i].IsHomePage {
			continue
		}
		if seen {
			out.Pages[i].IsHomePage = false
			changed = true
			continue
		}
		seen = true
	}
	return out, changed
}

// FindComponent locates a component by id across all pages.
func FindComponent(doc Document, id string) (ComponentDefinition, int, bool) {
	for pi, p := range doc.Pages {
		for _, c := range p.Components {
			if c.ID == id {
				return c, pi, true
			}
		}
	}
	return ComponentDefinition{}, -1, false
}

// ReplaceComponent returns a copy of doc where the component with the same id
// as updated is swapped for it. Pages and component slices are copied, never
// shared with the input.
func ReplaceComponent(doc Document, updated ComponentDefinition) (Document, error) {
	out := doc
	out.Pages = make([]PageDefinition, len(doc.Pages))
	found := false
	for pi, p := range doc.Pages {
		np := p
		np.Components = make([]ComponentDefinition, len(p.Components))
		copy(np.Components, p.Components)
		for ci := range np.Components {
			if np.Components[ci].ID == updated.ID {
				np.Components[ci] = updated.Clone()
				found = true
			}
		}
		out.Pages[pi] = np
	}
	if !found {
		return doc, fmt.Errorf("replace %s: %w", updated.ID, ErrComponentAbsent)
	}
	return out, nil
}

type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

type Issue struct {
	Severity IssueSeverity
	Page     string
	Message  string
}

// Validate checks the document invariants the editor relies on.
func Validate(doc Document) []Issue {
	var issues []Issue

	if len(doc.Pages) == 0 {
		issues = append(issues, Issue{Severity: SeverityError, Message: "document has no pages"})
		return issues
	}

	paths := make(map[string]string)
	homes := 0
	for _, p := range doc.Pages {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		if err := ValidateRoutePath(p.Path); err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Page: name, Message: err.Error()})
		}
		normalized := NormalizePath(p.Path)
		if other, ok := paths[normalized]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Page:     name,
				Message:  fmt.Sprintf("path %s already used by %s", normalized, other),
			})
		} else {
			paths[normalized] = name
		}
		if p.IsHomePage {
			homes++
		}
		if len(p.Components) == 0 {
			issues = append(issues, Issue{Severity: SeverityWarning, Page: name, Message: "page has no components"})
		}

		orders := make(map[int]int)
		for _, c := range p.Components {
			orders[c.OrderIndex]++
		}
		dups := make([]int, 0)
		for order, n := range orders {
			if n > 1 {
				dups = append(dups, order)
			}
		}
		sort.Ints(dups)
		for _, order := range dups {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Page:     name,
				Message:  fmt.Sprintf("order %d shared by %d components", order, orders[order]),
			})
		}
	}

	if homes > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d pages flagged as home, only the first is kept", homes),
		})
	}

	return issues
}
