package core

import "strings"

type DocumentKind string

const (
	KindTemplate DocumentKind = "template"
	KindProject  DocumentKind = "project"
)

// ComponentDefinition is one authorable unit on a page. When SourceText is
// set it is what gets rendered; Properties drives the editing panel.
type ComponentDefinition struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	SourceText   string         `json:"rawCode,omitempty"`
	Properties   PropertySchema `json:"properties"`
	Styles       StyleMap       `json:"styles,omitempty"`
	OrderIndex   int            `json:"order"`
	IsCustom     bool           `json:"isCustom,omitempty"`
	CachedMarkup string         `json:"html,omitempty"`
}

// HasSource reports whether the definition renders from author source.
func (c ComponentDefinition) HasSource() bool {
	return strings.TrimSpace(c.SourceText) != ""
}

// Clone returns a copy that shares no mutable state with c.
func (c ComponentDefinition) Clone() ComponentDefinition {
	out := c
	out.Properties = c.Properties.Clone()
	out.Styles = c.Styles.Clone()
	return out
}

// StyleMap holds raw style values keyed by category, e.g. backgroundColor.
type StyleMap map[string]string

func (m StyleMap) Clone() StyleMap {
	if m == nil {
		return nil
	}
	out := make(StyleMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type PageDefinition struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Path       string                `json:"path"`
	IsHomePage bool                  `json:"isHomePage,omitempty"`
	Components []ComponentDefinition `json:"components"`
}

type Document struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Kind  DocumentKind     `json:"kind,omitempty"`
	Pages []PageDefinition `json:"pages"`
}

type ElementCategory string

const (
	ElementHeading   ElementCategory = "heading"
	ElementParagraph ElementCategory = "paragraph"
	ElementButton    ElementCategory = "button"
	ElementLink      ElementCategory = "link"
	ElementImage     ElementCategory = "image"
	ElementContainer ElementCategory = "container"
	ElementGeneric   ElementCategory = "generic"
)

// ElementHandle is a transient view of one rendered node. It is rebuilt on
// every render pass and never persisted.
type ElementHandle struct {
	ElementID   string            `json:"elementId"`
	ElementType ElementCategory   `json:"elementType"`
	Path        []int             `json:"path"`
	Content     string            `json:"content,omitempty"`
	Classes     []string          `json:"classes,omitempty"`
	Style       map[string]string `json:"style,omitempty"`
	ComponentID string            `json:"componentId"`
}
