package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"sync"
	"time"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/panel"
	"github.com/3-lines-studio/studio/internal/preview"
	"github.com/3-lines-studio/studio/internal/props"
	"github.com/3-lines-studio/studio/internal/usecase"
)

const (
	SessionCookie = "studio_session"
	ReloadPath    = "/__studio/reload"

	DefaultSessionTTL = 30 * time.Minute
)

// Server serves live previews of one document. Every browser gets its own
// preview session, tracked by cookie. Sessions idle for longer than the
// session TTL are dropped.
type Server struct {
	source     usecase.DocumentSource
	pages      *usecase.PageService
	edits      *usecase.EditService
	reload     *ReloadHub
	isDev      bool
	sessionTTL time.Duration
	now        func() time.Time

	// editMu serialises read-apply-store of property edits.
	editMu sync.Mutex

	mu       sync.Mutex
	doc      core.Document
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	sess     *preview.Session
	lastSeen time.Time
}

func NewServer(source usecase.DocumentSource, pages *usecase.PageService, isDev bool) *Server {
	return &Server{
		source:     source,
		pages:      pages,
		reload:     NewReloadHub(),
		isDev:      isDev,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		sessions:   make(map[string]*sessionEntry),
	}
}

// WithSessionTTL sets how long an idle session is kept. Zero keeps sessions
// for the life of the server.
func (s *Server) WithSessionTTL(ttl time.Duration) *Server {
	s.sessionTTL = ttl
	return s
}

// WithEdits enables the property edit endpoint.
func (s *Server) WithEdits(edits *usecase.EditService) *Server {
	s.edits = edits
	return s
}

func (s *Server) Hub() *ReloadHub { return s.reload }

// Reload re-reads the document, hands it to every session and tells the
// open previews to refresh.
func (s *Server) Reload(ctx context.Context) error {
	doc, err := s.source.Load(ctx)
	if err != nil {
		return err
	}
	if repaired, changed := core.RepairHomePages(doc); changed {
		logx.Ctx(ctx).Warn("multiple home pages, keeping the first", "document", doc.ID)
		doc = repaired
	}
	s.setDocument(doc)
	s.reload.Notify()
	logx.Ctx(ctx).Info("document reloaded", "pages", len(doc.Pages))
	return nil
}

// Emit implements usecase.EventEmitter so edits made elsewhere refresh the
// open previews.
func (s *Server) Emit(ctx context.Context, ev usecase.Event) {
	logx.Ctx(ctx).Debug("preview event", "event", ev.Name, "component", ev.ComponentID)
	s.reload.Notify()
}

func (s *Server) setDocument(doc core.Document) {
	s.mu.Lock()
	s.doc = doc
	sessions := make([]*preview.Session, 0, len(s.sessions))
	for _, entry := range s.sessions {
		sessions = append(sessions, entry.sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.SetDocument(doc)
	}
}

func (s *Server) document() core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /preview", s.servePreview)
	mux.HandleFunc("GET /preview/{path...}", s.servePreview)
	mux.Handle("GET "+ReloadPath, s.reload)
	mux.HandleFunc("GET /api/schema/{componentID}", s.serveSchema)
	mux.HandleFunc("POST /api/properties/{componentID}", s.serveEdit)
	mux.HandleFunc("POST /api/activate/{elementID}", s.serveActivate)
	mux.HandleFunc("GET /api/elements", s.serveElements)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/preview/", http.StatusFound)
	})
	return mux
}

func (s *Server) session(w http.ResponseWriter, req *http.Request, create bool) *preview.Session {
	s.mu.Lock()
	now := s.now()
	expired := s.expireLocked(now)
	defer func() {
		s.mu.Unlock()
		for _, sess := range expired {
			sess.ClearNavigationHook()
			sess.Reset()
			logx.WithSession(logx.Ctx(req.Context()), sess.ID()).Info("preview session expired")
		}
	}()

	if c, err := req.Cookie(SessionCookie); err == nil {
		if entry, ok := s.sessions[c.Value]; ok {
			entry.lastSeen = now
			return entry.sess
		}
	}
	if !create {
		return nil
	}
	sess := preview.NewSession(s.pages, s.doc)
	s.sessions[sess.ID()] = &sessionEntry{sess: sess, lastSeen: now}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// expireLocked drops sessions idle past the TTL and returns them.
func (s *Server) expireLocked(now time.Time) []*preview.Session {
	if s.sessionTTL <= 0 {
		return nil
	}
	var expired []*preview.Session
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.sessionTTL {
			delete(s.sessions, id)
			expired = append(expired, entry.sess)
		}
	}
	return expired
}

func (s *Server) servePreview(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	path := "/" + req.PathValue("path")
	sess := s.session(w, req, true)

	page, err := sess.Render(ctx, path)
	if err != nil {
		s.serveError(w, err)
		return
	}
	sess.Flush(ctx)

	if n := page.Failed(); n > 0 {
		logx.WithSession(logx.WithPage(ctx, page.Page.ID), sess.ID()).Warn("page rendered with failures", "failed", n)
	}

	doc := s.document()
	reloadURL := ""
	if s.isDev {
		reloadURL = ReloadPath
	}
	out := core.RenderHTMLShell(page.HTML(), core.ShellOptions{
		Title:     pageTitle(doc, page.Page),
		ReloadURL: reloadURL,
		PageID:    page.Page.ID,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func pageTitle(doc core.Document, page core.PageDefinition) string {
	switch {
	case doc.Name != "" && page.Name != "":
		return page.Name + " · " + doc.Name
	case page.Name != "":
		return page.Name
	default:
		return doc.Name
	}
}

type schemaResponse struct {
	ComponentID string        `json:"componentId"`
	Type        string        `json:"type"`
	Fields      []panel.Field `json:"fields"`
}

func (s *Server) serveSchema(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("componentID")
	def, _, ok := core.FindComponent(s.document(), id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, core.ErrComponentAbsent)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{
		ComponentID: def.ID,
		Type:        def.Type,
		Fields:      panel.Fields(props.Schema(def)),
	})
}

type editRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (s *Server) serveEdit(w http.ResponseWriter, req *http.Request) {
	if s.edits == nil {
		writeJSONError(w, http.StatusNotFound, errors.New("editing disabled"))
		return
	}
	var body editRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	id := req.PathValue("componentID")
	s.editMu.Lock()
	out, err := s.edits.ApplyPanelEdit(req.Context(), s.document(), id, body.Key, body.Value)
	if err == nil {
		s.setDocument(out.Document)
	}
	s.editMu.Unlock()
	switch {
	case errors.Is(err, core.ErrComponentAbsent), errors.Is(err, panel.ErrUnknownProperty):
		writeJSONError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeJSONError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{
		ComponentID: out.Component.ID,
		Type:        out.Component.Type,
		Fields:      panel.Fields(out.Component.Properties),
	})
}

type activateResponse struct {
	ElementID  string `json:"elementId"`
	Handled    bool   `json:"handled"`
	Navigate   string `json:"navigate,omitempty"`
	Rerendered bool   `json:"rerendered"`
}

func (s *Server) serveActivate(w http.ResponseWriter, req *http.Request) {
	sess := s.session(w, req, false)
	if sess == nil {
		writeJSONError(w, http.StatusNotFound, preview.ErrNotRendered)
		return
	}
	res, err := sess.Activate(req.Context(), req.PathValue("elementID"))
	switch {
	case errors.Is(err, preview.ErrUnknownElement), errors.Is(err, preview.ErrNotRendered):
		writeJSONError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeJSONError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, activateResponse{
		ElementID:  res.ElementID,
		Handled:    res.Handled,
		Navigate:   res.Navigated,
		Rerendered: res.Rerendered,
	})
}

func (s *Server) serveElements(w http.ResponseWriter, req *http.Request) {
	sess := s.session(w, req, false)
	if sess == nil {
		writeJSON(w, http.StatusOK, []core.ElementHandle{})
		return
	}
	writeJSON(w, http.StatusOK, sess.Handles())
}

func (s *Server) serveError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	data := core.ErrorData{Title: "Internal Server Error", Message: err.Error(), IsDev: s.isDev}
	if core.IsKind(err, core.ResolutionFailure) {
		status = http.StatusNotFound
		data.Title = "Page not available"
	}

	var buf bytes.Buffer
	if err := core.PageErrorTemplate.Execute(&buf, data); err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<!doctype html><html><body><pre>" + html.EscapeString(data.Message) + "</pre></body></html>"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
