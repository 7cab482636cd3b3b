package shortcode

import (
	"context"
	"strings"

	"github.com/itsatony/go-shortcode/internal"
	"go.uber.org/zap"
)

// Engine compiles and strips shortcodes in text.
//
// The engine owns no state between calls: the result of Compile, Strip and
// Contains depends only on the registry, the configured lookup and renderer,
// and the input text. It is safe for concurrent use as long as the renderer
// is.
type Engine struct {
	registry *Registry
	lookup   TagLookup
	renderer Renderer
	hooks    *HookRegistry
	logger   *zap.Logger
}

// New creates an Engine with the given options.
// Without WithTagLookup and WithRenderer, shortcodes render through the
// callbacks of the engine's registry.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := config.registry
	if registry == nil {
		registry = NewRegistry(logger)
	}
	registry.SetDefaultMethod(config.defaultMethod)

	fallback := NewRegistryRenderer(registry)
	lookup := config.lookup
	if lookup == nil {
		lookup = fallback
	}
	renderer := config.renderer
	if renderer == nil {
		renderer = fallback
	}

	hooks := NewHookRegistry()
	for _, b := range config.hooks {
		hooks.Register(b.point, b.hook)
	}

	logger.Debug(LogMsgEngineCreated)
	return &Engine{
		registry: registry,
		lookup:   lookup,
		renderer: renderer,
		hooks:    hooks,
		logger:   logger,
	}, nil
}

// MustNew creates an Engine and panics on error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Hooks returns the engine's hook registry.
func (e *Engine) Hooks() *HookRegistry {
	return e.hooks
}

// RegisterShortcode binds a callback to one or more ":"-separated names.
func (e *Engine) RegisterShortcode(name string, cb Callback) error {
	return e.registry.RegisterShortcode(name, cb)
}

// MustRegisterShortcode registers a callback and panics on failure.
func (e *Engine) MustRegisterShortcode(name string, cb Callback) {
	e.registry.MustRegisterShortcode(name, cb)
}

// RegisterShortcodes registers every entry of the map.
func (e *Engine) RegisterShortcodes(shortcodes map[string]Callback) error {
	return e.registry.RegisterShortcodes(shortcodes)
}

// UnregisterShortcode removes a name. Unknown names are ignored.
func (e *Engine) UnregisterShortcode(name string) {
	e.registry.UnregisterShortcode(name)
}

// Exists checks whether a shortcode name is registered.
func (e *Engine) Exists(name string) bool {
	return e.registry.Exists(name)
}

// Count returns the number of registered shortcode names.
func (e *Engine) Count() int {
	return e.registry.Count()
}

// Parse compiles source, returning it untouched when it cannot contain a
// shortcode.
func (e *Engine) Parse(ctx context.Context, source string) (string, error) {
	if !strings.Contains(source, TagOpenChar) {
		return source, nil
	}
	return e.Compile(ctx, source)
}

// Compile replaces every shortcode in text with its rendered output.
// Text outside of shortcodes is preserved byte for byte.
//
// Escaped shortcodes ([[tag]]) come out as literal tags with one bracket
// layer removed, verbatim shortcodes come out as their own text without the
// verbatim flag, and shortcodes without a render target are left as they
// are. Only a failing renderer or a failing before hook produces an error.
func (e *Engine) Compile(ctx context.Context, text string) (string, error) {
	if err := e.runBefore(ctx, HookBeforeScan, &HookData{Source: text}); err != nil {
		return "", err
	}

	e.logger.Debug(LogMsgCompileStart, zap.Int(LogFieldSource, len(text)))

	count := 0
	out, err := internal.ReplaceAll(text, func(m internal.Match) (string, error) {
		count++
		return e.render(ctx, m)
	})
	if err != nil {
		return "", err
	}

	e.logger.Debug(LogMsgCompileEnd,
		zap.Int(LogFieldMatches, count),
		zap.Int(LogFieldResult, len(out)),
	)
	return out, nil
}

// render produces the replacement for a single match.
func (e *Engine) render(ctx context.Context, m internal.Match) (string, error) {
	if m.Escaped() {
		e.logger.Debug(LogMsgEscapedTag, zap.String(LogFieldShortcode, m.Name))
		return m.Literal(), nil
	}

	sc := newShortcode(m)

	if sc.IsVerbatim() {
		e.logger.Debug(LogMsgVerbatimTag, zap.String(LogFieldShortcode, sc.Name))
		return strings.Replace(m.Text, VerbatimMarker, "", 1), nil
	}

	id, ok := e.lookup.LookupTag(sc.Name)
	if !ok {
		// Unregistered tag-like text, e.g. a Markdown reference link.
		e.logger.Debug(LogMsgUnregisteredTag, zap.String(LogFieldShortcode, sc.Name))
		return m.Text, nil
	}

	if !e.renderer.TemplateExists(ctx, id) {
		e.logger.Warn(LogMsgMissingTemplate,
			zap.String(LogFieldShortcode, sc.Name),
			zap.String(LogFieldTemplate, string(id)),
		)
		return m.Text, nil
	}

	data := &HookData{Shortcode: sc, Template: id}
	if err := e.runBefore(ctx, HookBeforeRender, data); err != nil {
		return "", err
	}

	out, err := e.renderer.RenderTemplate(ctx, id, sc.Variables())

	data.Result, data.Error = out, err
	e.runAfter(ctx, HookAfterRender, data)

	if err != nil {
		e.logger.Error(LogMsgRenderFailed,
			zap.String(LogFieldShortcode, sc.Name),
			zap.String(LogFieldTemplate, string(id)),
			zap.Error(err),
		)
		return "", NewRenderError(ErrMsgRenderFailed, sc.Name, id, err)
	}

	return out, nil
}

// Strip removes all shortcode syntax from text.
// Escaped shortcodes become literal tags with one bracket layer removed; any
// other shortcode is deleted, keeping only a stray escape bracket.
// Text is returned unchanged when no shortcode is registered.
func (e *Engine) Strip(ctx context.Context, text string) string {
	if e.registry.Count() == 0 {
		return text
	}
	if err := e.runBefore(ctx, HookBeforeScan, &HookData{Source: text}); err != nil {
		return text
	}

	count := 0
	out, _ := internal.ReplaceAll(text, func(m internal.Match) (string, error) {
		count++
		if m.Escaped() {
			return m.Literal(), nil
		}
		lead, trail := m.Markers()
		return lead + trail, nil
	})

	e.logger.Debug(LogMsgStripped, zap.Int(LogFieldMatches, count))
	return out
}

// Contains reports whether text holds at least one shortcode named name.
// Unregistered names return false without scanning.
func (e *Engine) Contains(ctx context.Context, text, name string) bool {
	if !e.registry.Exists(name) {
		return false
	}
	if err := e.runBefore(ctx, HookBeforeScan, &HookData{Source: text}); err != nil {
		return false
	}
	for _, m := range internal.FindAll(text) {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Find returns every shortcode in text without rendering anything.
// Escaped shortcodes are skipped.
func (e *Engine) Find(ctx context.Context, text string) []*Shortcode {
	if err := e.runBefore(ctx, HookBeforeScan, &HookData{Source: text}); err != nil {
		return nil
	}
	matches := internal.FindAll(text)
	found := make([]*Shortcode, 0, len(matches))
	for _, m := range matches {
		if m.Escaped() {
			continue
		}
		found = append(found, newShortcode(m))
	}
	return found
}

func (e *Engine) runBefore(ctx context.Context, point HookPoint, data *HookData) error {
	if errs := e.hooks.Run(ctx, point, data); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (e *Engine) runAfter(ctx context.Context, point HookPoint, data *HookData) {
	for _, err := range e.hooks.Run(ctx, point, data) {
		e.logger.Warn(LogMsgHookFailed,
			zap.String(LogFieldHookPoint, string(point)),
			zap.Error(err),
		)
	}
}
