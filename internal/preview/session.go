// Package preview keeps the interactive state of one preview: component hook
// state, the installed navigation hook, element addressing and activation.
package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/3-lines-studio/studio/internal/address"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/script"
	"github.com/3-lines-studio/studio/internal/usecase"
	"github.com/3-lines-studio/studio/internal/vdom"
)

var (
	ErrUnknownElement = errors.New("unknown element")
	ErrNotRendered    = errors.New("session has not rendered a page")
)

// ActivateResult reports what an activation did.
type ActivateResult struct {
	ElementID  string
	Handled    bool
	Navigated  string
	Rerendered bool
}

// Session is one live preview. It is safe for concurrent use; renders and
// activations are serialised.
type Session struct {
	id        string
	pages     *usecase.PageService
	scheduler *address.Scheduler

	mu       sync.Mutex
	doc      core.Document
	path     string
	hook     func(path string)
	hooks    map[string]*script.HookState
	current  *usecase.PageRender
	nodes    map[string]*vdom.Node
	parents  map[*vdom.Node]*vdom.Node
	handles  map[string]core.ElementHandle
	navigate string
}

func NewSession(pages *usecase.PageService, doc core.Document) *Session {
	return &Session{
		id:        uuid.NewString(),
		pages:     pages,
		scheduler: address.NewScheduler(),
		doc:       doc,
		path:      "/",
		hooks:     make(map[string]*script.HookState),
	}
}

func (s *Session) ID() string { return s.id }

// Path is the page path the session last rendered or navigated to.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// InstallNavigationHook routes link activations of this session to fn.
func (s *Session) InstallNavigationHook(fn func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

func (s *Session) ClearNavigationHook() {
	s.InstallNavigationHook(nil)
}

// SetDocument swaps the document. Hook state of components that are gone is
// dropped; the rest keeps its state.
func (s *Session) SetDocument(doc core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	for id := range s.hooks {
		if _, _, ok := core.FindComponent(doc, id); !ok {
			delete(s.hooks, id)
		}
	}
}

// Reset forgets all component state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = make(map[string]*script.HookState)
}

// Render assembles the page for path and schedules the addressing pass. The
// page carries element ids once Flush has run.
func (s *Session) Render(ctx context.Context, path string) (usecase.PageRender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked(ctx, path)
}

// settlePasses bounds the re-renders triggered by effects that set state.
const settlePasses = 3

func (s *Session) renderLocked(ctx context.Context, path string) (usecase.PageRender, error) {
	ctx = logx.ContextWithSession(ctx, s.id)
	for pass := 1; ; pass++ {
		page, err := s.pages.AssemblePage(ctx, s.doc, path,
			usecase.WithHooksFor(s.hookState),
			usecase.WithNavigate(s.onNavigate),
		)
		if err != nil {
			return page, err
		}
		s.path = core.NormalizePath(path)
		s.current = &page
		s.nodes = nil
		for _, cr := range page.Components {
			s.scheduler.Schedule(cr.Definition.ID, cr.Result.Tree)
			if h := s.hooks[cr.Definition.ID]; h != nil {
				h.MarkClean()
				if err := h.RunEffects(); err != nil {
					logx.WithComponent(ctx, cr.Definition.ID, cr.Definition.Type).Warn("effect failed", "err", err)
				}
			}
		}
		if pass >= settlePasses || !s.dirty() {
			return page, nil
		}
	}
}

func (s *Session) dirty() bool {
	for _, h := range s.hooks {
		if h.Dirty() {
			return true
		}
	}
	return false
}

func (s *Session) hookState(componentID string) *script.HookState {
	h, ok := s.hooks[componentID]
	if !ok {
		h = script.NewHookState()
		s.hooks[componentID] = h
	}
	return h
}

// onNavigate runs from inside event handlers while the session lock is held.
func (s *Session) onNavigate(path string) {
	s.navigate = path
}

// Flush runs the pending addressing pass against the current document and
// indexes the addressed elements for activation.
func (s *Session) Flush(ctx context.Context) address.FlushResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Session) flushLocked(ctx context.Context) address.FlushResult {
	doc := s.doc
	res := s.scheduler.Flush(logx.ContextWithSession(ctx, s.id), func(id string) bool {
		_, _, ok := core.FindComponent(doc, id)
		return ok
	})
	s.index()
	return res
}

func (s *Session) index() {
	s.nodes = make(map[string]*vdom.Node)
	s.parents = make(map[*vdom.Node]*vdom.Node)
	s.handles = make(map[string]core.ElementHandle)
	if s.current == nil {
		return
	}
	for _, cr := range s.current.Components {
		componentID := cr.Definition.ID
		var visit func(parent, n *vdom.Node)
		visit = func(parent, n *vdom.Node) {
			if n == nil {
				return
			}
			if parent != nil {
				s.parents[n] = parent
			}
			if id, ok := n.Attr(address.AttrID); ok && n.IsElement() {
				s.nodes[id] = n
				s.handles[id] = address.Handle(componentID, n)
			}
			for _, c := range n.Children {
				visit(n, c)
			}
		}
		visit(nil, cr.Result.Tree)
	}
}

// Handle returns the addressed element with the given id.
func (s *Session) Handle(elementID string) (core.ElementHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[elementID]
	return h, ok
}

// Handles lists every addressed element of the current page.
func (s *Session) Handles() []core.ElementHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ElementHandle, 0, len(s.handles))
	if s.current == nil {
		return out
	}
	for _, cr := range s.current.Components {
		vdom.Walk(cr.Result.Tree, func(n *vdom.Node) bool {
			if id, ok := n.Attr(address.AttrID); ok {
				if h, ok := s.handles[id]; ok {
					out = append(out, h)
				}
			}
			return true
		})
	}
	return out
}

// Activate dispatches a click on the element. The event bubbles to the
// nearest ancestor with a click handler or a neutralized link. Dirty
// components and navigations re-render the page.
func (s *Session) Activate(ctx context.Context, elementID string) (ActivateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := ActivateResult{ElementID: elementID}
	if s.current == nil {
		return res, ErrNotRendered
	}
	if s.nodes == nil {
		s.flushLocked(ctx)
	}
	node, ok := s.nodes[elementID]
	if !ok {
		return res, fmt.Errorf("activate %s: %w", elementID, ErrUnknownElement)
	}
	log := logx.WithSession(logx.Ctx(ctx), s.id).With("element", elementID)

	s.navigate = ""
	for n := node; n != nil; n = s.parents[n] {
		if h, ok := n.Handlers["click"]; ok {
			res.Handled = true
			if err := h(); err != nil {
				log.Warn("click handler failed", "err", err)
				return res, fmt.Errorf("activate %s: %w", elementID, err)
			}
			break
		}
		if href, ok := n.Attr("data-href"); ok && href != "" {
			res.Handled = true
			s.navigate = href
			break
		}
	}

	target := ""
	if s.navigate != "" {
		target = s.navigate
		s.navigate = ""
		res.Navigated = target
		if s.hook != nil {
			s.hook(target)
		}
	}

	dirty := s.dirty()
	if !dirty && target == "" {
		return res, nil
	}

	path := s.path
	if target != "" {
		path = target
	}
	if _, err := s.renderLocked(ctx, path); err != nil {
		return res, err
	}
	s.flushLocked(ctx)
	res.Rerendered = true
	log.Debug("element activated", "navigated", target, "dirty", dirty)
	return res, nil
}

// Page returns the last rendered page.
func (s *Session) Page() (usecase.PageRender, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return usecase.PageRender{}, false
	}
	return *s.current, true
}
