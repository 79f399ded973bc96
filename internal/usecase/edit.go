package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/3-lines-studio/studio/internal/address"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/panel"
	"github.com/3-lines-studio/studio/internal/props"
)

// EditService applies panel and element edits as whole-component replaces:
// the updated definition is persisted, swapped into a copy of the document
// and announced. Nothing is mutated in place.
type EditService struct {
	source DocumentSource
	events EventEmitter
	now    func() time.Time
}

func NewEditService(source DocumentSource, events EventEmitter) *EditService {
	return &EditService{source: source, events: events, now: time.Now}
}

type EditOutput struct {
	Document  core.Document
	Component core.ComponentDefinition
}

// ApplyPanelEdit sets one property from raw panel input.
func (s *EditService) ApplyPanelEdit(ctx context.Context, doc core.Document, componentID, key string, raw any) (EditOutput, error) {
	def, _, ok := core.FindComponent(doc, componentID)
	if !ok {
		return EditOutput{Document: doc}, fmt.Errorf("panel edit %s: %w", componentID, core.ErrComponentAbsent)
	}
	schema, err := panel.Apply(props.Schema(def), key, raw)
	if err != nil {
		return EditOutput{Document: doc, Component: def}, fmt.Errorf("panel edit %s: %w", componentID, err)
	}
	updated := def.Clone()
	updated.Properties = schema
	return s.commit(ctx, doc, updated, true)
}

// ApplyElementEdit translates an edit made on a rendered element.
func (s *EditService) ApplyElementEdit(ctx context.Context, doc core.Document, handle core.ElementHandle, edit address.Edit) (EditOutput, error) {
	def, _, ok := core.FindComponent(doc, handle.ComponentID)
	if !ok {
		return EditOutput{Document: doc}, fmt.Errorf("element edit %s: %w", handle.ElementID, core.ErrComponentAbsent)
	}
	updated, err := address.ApplyEdit(def, handle, edit)
	if err != nil {
		return EditOutput{Document: doc, Component: def}, err
	}
	return s.commit(ctx, doc, updated, edit.Content != nil)
}

// UpdateSource replaces a component's source and re-derives its schema.
func (s *EditService) UpdateSource(ctx context.Context, doc core.Document, componentID, source string) (EditOutput, error) {
	def, _, ok := core.FindComponent(doc, componentID)
	if !ok {
		return EditOutput{Document: doc}, fmt.Errorf("source edit %s: %w", componentID, core.ErrComponentAbsent)
	}
	updated := def.Clone()
	updated.SourceText = source
	updated.IsCustom = true
	if updated.HasSource() {
		updated.Properties = props.Extract(source)
	}
	return s.commit(ctx, doc, updated, false)
}

// ApplyStyles replaces style entries; empty values remove the entry.
func (s *EditService) ApplyStyles(ctx context.Context, doc core.Document, componentID string, styles map[string]string) (EditOutput, error) {
	def, _, ok := core.FindComponent(doc, componentID)
	if !ok {
		return EditOutput{Document: doc}, fmt.Errorf("style edit %s: %w", componentID, core.ErrComponentAbsent)
	}
	updated, err := address.ApplyEdit(def, core.ElementHandle{ComponentID: def.ID}, address.Edit{Style: styles})
	if err != nil {
		return EditOutput{Document: doc, Component: def}, err
	}
	return s.commit(ctx, doc, updated, false)
}

func (s *EditService) commit(ctx context.Context, doc core.Document, updated core.ComponentDefinition, reauthor bool) (EditOutput, error) {
	if reauthor && updated.HasSource() {
		updated.SourceText = props.Replace(updated.SourceText, updated.Properties)
	}
	next, err := core.ReplaceComponent(doc, updated)
	if err != nil {
		return EditOutput{Document: doc}, err
	}
	if s.source != nil {
		if err := s.source.SaveComponent(ctx, updated); err != nil {
			return EditOutput{Document: doc}, fmt.Errorf("save %s: %w", updated.ID, err)
		}
	}
	logx.WithComponent(ctx, updated.ID, updated.Type).Info("component updated")
	if s.events != nil {
		s.events.Emit(ctx, Event{
			Name:        EventComponentUpdated,
			DocumentID:  doc.ID,
			ComponentID: updated.ID,
			At:          s.now(),
		})
	}
	return EditOutput{Document: next, Component: updated}, nil
}
