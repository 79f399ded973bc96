// Package store reads and writes documents kept in an opaque JSON envelope.
// Only the fields the engine owns are touched on write; everything else in
// the file is preserved byte for byte.
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/3-lines-studio/studio/internal/adapters/fs"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/logx"
)

type FileStore struct {
	path string
	fs   fs.FileSystem
	mu   sync.Mutex
}

func NewFileStore(path string, fsys fs.FileSystem) *FileStore {
	return &FileStore{path: path, fs: fsys}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return core.Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return core.Document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	logx.Ctx(ctx).Debug("document loaded", "path", s.path, "pages", len(doc.Pages))
	return doc, nil
}

// SaveComponent writes the engine-owned fields of def back to the component
// with the same id.
func (s *FileStore) SaveComponent(ctx context.Context, def core.ComponentDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	out, err := Encode(data, def)
	if err != nil {
		return err
	}
	if err := s.fs.WriteFile(s.path, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	logx.WithComponent(ctx, def.ID, def.Type).Debug("component saved", "path", s.path)
	return nil
}

// SaveHomePages writes the home page flag of every page in doc back to the
// page with the same id.
func (s *FileStore) SaveHomePages(ctx context.Context, doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	homes := make(map[string]bool, len(doc.Pages))
	for _, p := range doc.Pages {
		homes[p.ID] = p.IsHomePage
	}
	out := data
	gjson.GetBytes(data, "pages").ForEach(func(pi, p gjson.Result) bool {
		home, ok := homes[p.Get("id").String()]
		if !ok || p.Get("isHomePage").Bool() == home {
			return true
		}
		out, err = sjson.SetBytes(out, "pages."+strconv.Itoa(int(pi.Int()))+".isHomePage", home)
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("save home pages: %w", err)
	}
	if err := s.fs.WriteFile(s.path, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	logx.Ctx(ctx).Debug("home pages saved", "path", s.path)
	return nil
}

// Decode reads a document envelope. Properties and styles may be stored as
// JSON text or as nested objects. Components without an id get a fresh one.
func Decode(data []byte) (core.Document, error) {
	if !gjson.ValidBytes(data) {
		return core.Document{}, fmt.Errorf("invalid json")
	}
	root := gjson.ParseBytes(data)
	doc := core.Document{
		ID:   root.Get("id").String(),
		Name: root.Get("name").String(),
		Kind: core.DocumentKind(root.Get("kind").String()),
	}
	var err error
	root.Get("pages").ForEach(func(_, p gjson.Result) bool {
		page := core.PageDefinition{
			ID:         p.Get("id").String(),
			Name:       p.Get("name").String(),
			Path:       p.Get("path").String(),
			IsHomePage: p.Get("isHomePage").Bool(),
		}
		p.Get("components").ForEach(func(_, c gjson.Result) bool {
			var def core.ComponentDefinition
			def, err = decodeComponent(c)
			if err != nil {
				err = fmt.Errorf("page %s: %w", page.ID, err)
				return false
			}
			page.Components = append(page.Components, def)
			return true
		})
		if err != nil {
			return false
		}
		doc.Pages = append(doc.Pages, page)
		return true
	})
	return doc, err
}

func decodeComponent(c gjson.Result) (core.ComponentDefinition, error) {
	def := core.ComponentDefinition{
		ID:           c.Get("id").String(),
		Type:         c.Get("type").String(),
		SourceText:   c.Get("rawCode").String(),
		IsCustom:     c.Get("isCustom").Bool(),
		CachedMarkup: c.Get("html").String(),
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	order := c.Get("order")
	if !order.Exists() {
		order = c.Get("orderIndex")
	}
	def.OrderIndex = int(order.Int())

	props, err := core.ParsePropertySchema(embedded(c.Get("properties")))
	if err != nil {
		return def, fmt.Errorf("component %s properties: %w", def.ID, err)
	}
	def.Properties = props

	styles := gjson.Parse(embedded(c.Get("styles")))
	if styles.IsObject() {
		def.Styles = core.StyleMap{}
		styles.ForEach(func(k, v gjson.Result) bool {
			def.Styles[k.String()] = v.String()
			return true
		})
	}
	return def, nil
}

// embedded returns the JSON held by r, unwrapping values stored as strings.
func embedded(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "null"
	case r.Type == gjson.String:
		if strings.TrimSpace(r.Str) == "" {
			return "null"
		}
		return r.Str
	default:
		return r.Raw
	}
}

// Encode writes def into the envelope, keeping each field in the form it was
// stored in.
func Encode(data []byte, def core.ComponentDefinition) ([]byte, error) {
	base, ok := locate(data, def.ID)
	if !ok {
		return nil, fmt.Errorf("save %s: %w", def.ID, core.ErrComponentAbsent)
	}
	props, err := def.Properties.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", def.ID, err)
	}
	styles := []byte("{}")
	if len(def.Styles) > 0 {
		obj := []byte("{}")
		for _, k := range sortedKeys(def.Styles) {
			obj, err = sjson.SetBytes(obj, escapeKey(k), def.Styles[k])
			if err != nil {
				return nil, fmt.Errorf("save %s styles: %w", def.ID, err)
			}
		}
		styles = obj
	}

	out := data
	set := func(field string, value any) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, base+"."+field, value)
	}
	setJSON := func(field string, raw []byte) {
		if err != nil {
			return
		}
		if gjson.GetBytes(out, base+"."+field).IsObject() {
			out, err = sjson.SetRawBytes(out, base+"."+field, raw)
			return
		}
		out, err = sjson.SetBytes(out, base+"."+field, string(raw))
	}

	set("rawCode", def.SourceText)
	setJSON("properties", props)
	setJSON("styles", styles)
	orderField := "order"
	if !gjson.GetBytes(out, base+".order").Exists() && gjson.GetBytes(out, base+".orderIndex").Exists() {
		orderField = "orderIndex"
	}
	set(orderField, def.OrderIndex)
	if def.CachedMarkup != "" || gjson.GetBytes(out, base+".html").Exists() {
		set("html", def.CachedMarkup)
	}
	if def.IsCustom {
		set("isCustom", true)
	}
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", def.ID, err)
	}
	return out, nil
}

func locate(data []byte, componentID string) (string, bool) {
	path := ""
	gjson.GetBytes(data, "pages").ForEach(func(pi, p gjson.Result) bool {
		p.Get("components").ForEach(func(ci, c gjson.Result) bool {
			if c.Get("id").String() == componentID {
				path = "pages." + strconv.Itoa(int(pi.Int())) + ".components." + strconv.Itoa(int(ci.Int()))
				return false
			}
			return true
		})
		return path == ""
	})
	return path, path != ""
}

func escapeKey(k string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)
	return r.Replace(k)
}

func sortedKeys(m core.StyleMap) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
