package shortcode

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	logger        *zap.Logger
	registry      *Registry
	lookup        TagLookup
	renderer      Renderer
	defaultMethod string
	hooks         []hookBinding
}

type hookBinding struct {
	point HookPoint
	hook  Hook
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		defaultMethod: DefaultMethod,
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithRegistry uses an existing registry instead of a fresh one.
func WithRegistry(registry *Registry) Option {
	return func(c *engineConfig) {
		c.registry = registry
	}
}

// WithTagLookup sets how shortcode names map to render targets.
// Default: every registered name maps to its own callback.
func WithTagLookup(lookup TagLookup) Option {
	return func(c *engineConfig) {
		c.lookup = lookup
	}
}

// WithRenderer sets the rendering backend.
// Default: the registry callbacks (RegistryRenderer).
func WithRenderer(renderer Renderer) Option {
	return func(c *engineConfig) {
		c.renderer = renderer
	}
}

// WithDefaultMethod sets the method invoked on type callbacks.
// Default: "parse", bound to the exported method Parse.
func WithDefaultMethod(method string) Option {
	return func(c *engineConfig) {
		if method != "" {
			c.defaultMethod = method
		}
	}
}

// WithHook registers a hook at the given point.
func WithHook(point HookPoint, hook Hook) Option {
	return func(c *engineConfig) {
		c.hooks = append(c.hooks, hookBinding{point: point, hook: hook})
	}
}
