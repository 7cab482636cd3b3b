package shortcode

import (
	"context"
)

// TemplateID identifies a render target. Its meaning belongs to the
// Renderer: the registry backend uses the shortcode name, the template
// backend uses a storage template name.
type TemplateID string

// TagLookup maps a shortcode name to its render target.
type TagLookup interface {
	// LookupTag returns the render target for name, or false when the tag
	// has none. Unmapped tags are left in the text unchanged.
	LookupTag(name string) (TemplateID, bool)
}

// Renderer produces the replacement text for a shortcode.
// It is the only part of compilation that may perform I/O.
type Renderer interface {
	// TemplateExists reports whether id can be rendered.
	TemplateExists(ctx context.Context, id TemplateID) bool

	// RenderTemplate renders id with the shortcode's variables. vars holds
	// every attribute plus the reserved "content" and "shortcode" entries.
	RenderTemplate(ctx context.Context, id TemplateID, vars map[string]any) (string, error)
}

// TagMapping is a static TagLookup, typically loaded from settings.
type TagMapping map[string]string

// LookupTag implements TagLookup. Empty targets count as unmapped.
func (m TagMapping) LookupTag(name string) (TemplateID, bool) {
	target, ok := m[name]
	if !ok || target == "" {
		return "", false
	}
	return TemplateID(target), true
}

// Names returns the mapped shortcode names.
func (m TagMapping) Names() []string {
	names := make([]string, 0, len(m))
	for name, target := range m {
		if target != "" {
			names = append(names, name)
		}
	}
	return names
}

// RegistryRenderer renders shortcodes through the callbacks of a Registry.
// It implements both TagLookup and Renderer and is the engine's default.
type RegistryRenderer struct {
	registry *Registry
}

// NewRegistryRenderer creates a renderer backed by registry.
func NewRegistryRenderer(registry *Registry) *RegistryRenderer {
	return &RegistryRenderer{registry: registry}
}

// LookupTag maps every registered name to itself.
func (r *RegistryRenderer) LookupTag(name string) (TemplateID, bool) {
	if !r.registry.Exists(name) {
		return "", false
	}
	return TemplateID(name), true
}

// TemplateExists reports whether the callback for id can be resolved.
func (r *RegistryRenderer) TemplateExists(_ context.Context, id TemplateID) bool {
	_, err := r.registry.ResolveCallback(string(id))
	return err == nil
}

// RenderTemplate invokes the callback registered for id with the shortcode
// carried in vars.
func (r *RegistryRenderer) RenderTemplate(ctx context.Context, id TemplateID, vars map[string]any) (string, error) {
	sc, ok := vars[VarShortcode].(*Shortcode)
	if !ok || sc == nil {
		return "", NewRenderError(ErrMsgMissingShortcodeVar, string(id), id, nil)
	}
	rc, err := r.registry.ResolveCallback(string(id))
	if err != nil {
		return "", err
	}
	return rc.Invoke(ctx, sc)
}

// TemplateCallback returns a callback that renders through renderer.
// It lets names served by an external backend live in a Registry, so
// Exists, Count, Contains and Strip see them.
func TemplateCallback(renderer Renderer, id TemplateID) Callback {
	return InlineCallback(func(ctx context.Context, sc *Shortcode) (string, error) {
		return renderer.RenderTemplate(ctx, id, sc.Variables())
	})
}
