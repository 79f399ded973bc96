package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/preprocess"
	"github.com/3-lines-studio/studio/internal/props"
	"github.com/3-lines-studio/studio/internal/script"
	"github.com/3-lines-studio/studio/internal/vdom"
)

type FallbackKind string

const (
	FallbackNone        FallbackKind = ""
	FallbackTemplate    FallbackKind = "template"
	FallbackMarkup      FallbackKind = "cached-markup"
	FallbackPlaceholder FallbackKind = "placeholder"
)

type RenderConfig struct {
	StepLimit    int
	Timeout      time.Duration
	CacheEntries int
	CacheTTL     time.Duration
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		StepLimit:    script.DefaultStepLimit,
		Timeout:      500 * time.Millisecond,
		CacheEntries: 256,
		CacheTTL:     5 * time.Minute,
	}
}

type RenderOptions struct {
	Navigate  func(path string)
	Hooks     *script.HookState
	HooksFor  func(componentID string) *script.HookState
	StepLimit int
	Timeout   time.Duration
	NoCache   bool
}

type RenderOption func(*RenderOptions)

// WithNavigate routes neutralized links of this render to fn.
func WithNavigate(fn func(path string)) RenderOption {
	return func(o *RenderOptions) { o.Navigate = fn }
}

// WithHooks renders against an existing hook state, keeping component state
// across renders. Stateful renders bypass the cache.
func WithHooks(h *script.HookState) RenderOption {
	return func(o *RenderOptions) { o.Hooks = h }
}

// WithHooksFor looks up hook state per component, for renders that cover
// several components such as a whole page.
func WithHooksFor(fn func(componentID string) *script.HookState) RenderOption {
	return func(o *RenderOptions) { o.HooksFor = fn }
}

func WithStepLimit(n int) RenderOption {
	return func(o *RenderOptions) { o.StepLimit = n }
}

func WithTimeout(d time.Duration) RenderOption {
	return func(o *RenderOptions) { o.Timeout = d }
}

func WithoutCache() RenderOption {
	return func(o *RenderOptions) { o.NoCache = true }
}

type RenderResult struct {
	ComponentID string
	Tree        *vdom.Node
	State       core.RenderStage
	Trace       []core.RenderStage
	Fallback    FallbackKind
	Err         *core.RenderError
	Cached      bool
	ExportName  string
	Props       *literal.Object
}

func (r RenderResult) HTML() string {
	return vdom.Render(r.Tree)
}

func (r *RenderResult) enter(stage core.RenderStage) {
	r.State = stage
	r.Trace = append(r.Trace, stage)
}

type RenderService struct {
	cfg   RenderConfig
	cache *renderCache
}

func NewRenderService(cfg RenderConfig) *RenderService {
	if cfg.StepLimit <= 0 {
		cfg.StepLimit = script.DefaultStepLimit
	}
	return &RenderService{
		cfg:   cfg,
		cache: newRenderCache(cfg.CacheTTL, cfg.CacheEntries),
	}
}

// ClearCache drops every cached render.
func (s *RenderService) ClearCache() {
	s.cache.clear()
}

// RenderComponent runs def through preprocessing, transformation and
// evaluation. It never returns an empty tree: failures fall back to the
// type's static template, then the cached markup, then an error placeholder.
func (s *RenderService) RenderComponent(ctx context.Context, def core.ComponentDefinition, overrides map[string]any, opts ...RenderOption) (res RenderResult) {
	o := RenderOptions{StepLimit: s.cfg.StepLimit, Timeout: s.cfg.Timeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Hooks == nil && o.HooksFor != nil {
		o.Hooks = o.HooksFor(def.ID)
	}
	log := logx.WithComponent(ctx, def.ID, def.Type)
	ctx = logx.ContextWithComponent(ctx, log, def.ID)

	res = RenderResult{ComponentID: def.ID}
	res.enter(core.StageIdle)

	defer func() {
		if r := recover(); r != nil {
			res.fail(&core.RenderError{
				Kind:    core.RuntimeFailure,
				Message: "internal error",
				Detail:  fmt.Sprint(r),
				Err:     fmt.Errorf("panic: %v", r),
			})
			s.fallback(ctx, def, &res)
		}
	}()

	res.Props = props.Merge(props.Schema(def), overrides)

	if !def.HasSource() {
		s.fallback(ctx, def, &res)
		return res
	}

	cacheable := !o.NoCache && o.Hooks == nil && o.Navigate == nil
	var key string
	if cacheable {
		data, err := res.Props.MarshalJSON()
		if err == nil {
			key = core.RenderKey(def.SourceText, data)
			if tree, ok := s.cache.get(key); ok {
				res.Tree = tree
				res.Cached = true
				res.enter(core.StageRendered)
				return res
			}
		}
	}

	res.enter(core.StagePreprocessing)
	pre := preprocess.Process(def.SourceText)
	res.ExportName = pre.ExportName
	log.Debug("component preprocessed", "export", pre.ExportName, "detected", pre.Detected, "rewrites", len(pre.Rewrites))

	res.enter(core.StageTransforming)
	prog, err := script.Parse(pre.Text)
	if err != nil {
		res.fail(transformError(err, pre))
		log.Warn("component transform failed", "err", err)
		s.fallback(ctx, def, &res)
		return res
	}

	res.enter(core.StageEvaluating)
	evalCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	in := script.New(evalCtx, prog, script.Options{
		StepLimit: o.StepLimit,
		Navigate:  o.Navigate,
		Globals:   map[string]script.Value{"props": res.Props},
	})
	if err := in.Run(); err != nil {
		res.fail(runtimeError(err, pre, "top-level evaluation failed"))
		log.Warn("component evaluation failed", "err", err)
		s.fallback(ctx, def, &res)
		return res
	}
	fn, name, ok := in.Component(pre.ExportName)
	if !ok {
		res.fail(&core.RenderError{
			Kind:    core.RuntimeFailure,
			Stage:   core.StageEvaluating,
			Message: "no component function found",
			Detail:  fmt.Sprintf("looked for %q and top-level capitalised functions", pre.ExportName),
		})
		log.Warn("component has no render function")
		s.fallback(ctx, def, &res)
		return res
	}
	res.ExportName = name

	tree, err := in.Render(fn, res.Props, o.Hooks)
	if err != nil {
		rerr := runtimeError(err, pre, "component threw")
		res.Err = rerr
		res.Tree = ErrorNode(rerr)
		res.enter(core.StageRendered)
		log.Warn("component render failed", "err", err)
		return res
	}
	if tree == nil {
		tree = vdom.Fragment()
	}
	if o.Hooks != nil || o.Navigate != nil {
		in.Detach()
	}
	res.Tree = tree
	res.enter(core.StageRendered)
	if key != "" {
		s.cache.set(key, tree)
	}
	return res
}

func (r *RenderResult) fail(rerr *core.RenderError) {
	if rerr.Stage == "" {
		rerr.Stage = r.State
	}
	r.Err = rerr
	r.enter(core.StageFailed)
}

func transformError(err error, pre preprocess.Result) *core.RenderError {
	rerr := &core.RenderError{
		Kind:    core.TransformFailure,
		Stage:   core.StageTransforming,
		Message: err.Error(),
		Detail:  err.Error(),
		Err:     err,
	}
	var syn *script.SyntaxError
	if errors.As(err, &syn) {
		rerr.Line = pre.SourceLine(syn.Line)
		rerr.Col = syn.Col
		rerr.Message = syn.Msg
		rerr.Detail = fmt.Sprintf("line %d, column %d: %s", rerr.Line, rerr.Col, syn.Msg)
	}
	return rerr
}

func runtimeError(err error, pre preprocess.Result, message string) *core.RenderError {
	rerr := &core.RenderError{
		Kind:    core.RuntimeFailure,
		Stage:   core.StageEvaluating,
		Message: message,
		Detail:  err.Error(),
		Err:     err,
	}
	var rt *script.RuntimeError
	if errors.As(err, &rt) {
		rerr.Message = rt.Msg
		if rt.Line > 0 {
			rerr.Line = pre.SourceLine(rt.Line)
			rerr.Col = rt.Col
			rerr.Detail = fmt.Sprintf("line %d, column %d: %s", rerr.Line, rerr.Col, rt.Msg)
		}
	}
	switch {
	case errors.Is(err, script.ErrBudget):
		rerr.Message = "evaluation took too many steps"
	case errors.Is(err, context.DeadlineExceeded):
		rerr.Message = "evaluation timed out"
	}
	return rerr
}
