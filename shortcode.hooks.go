package shortcode

import (
	"context"
	"sync"
)

// HookPoint identifies when a hook is called during compilation.
type HookPoint string

// Hook points for compile lifecycle events.
const (
	// HookBeforeScan is called before a text is scanned for shortcodes.
	HookBeforeScan HookPoint = "before_scan"

	// HookBeforeRender is called before a shortcode is handed to the renderer.
	HookBeforeRender HookPoint = "before_render"

	// HookAfterRender is called after rendering, whether it succeeded or not.
	HookAfterRender HookPoint = "after_render"
)

// Hook is called at specific points during compilation.
// An error from a "before" hook aborts the operation; errors from "after"
// hooks are logged and otherwise ignored.
type Hook func(ctx context.Context, point HookPoint, data *HookData) error

// HookData carries context information to hooks.
type HookData struct {
	// Source is the text being scanned (before_scan only).
	Source string

	// Shortcode is the occurrence being rendered.
	Shortcode *Shortcode

	// Template is the render target.
	Template TemplateID

	// Result is the rendered output (after_render, may be empty on error).
	Result string

	// Error is the render error, if any (after_render).
	Error error
}

// HookRegistry manages hook registration and execution.
type HookRegistry struct {
	mu    sync.RWMutex
	hooks map[HookPoint][]Hook
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{hooks: make(map[HookPoint][]Hook)}
}

// Register adds a hook for the specified point.
func (r *HookRegistry) Register(point HookPoint, hook Hook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[point] = append(r.hooks[point], hook)
}

// Clear removes all hooks for a point.
func (r *HookRegistry) Clear(point HookPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hooks, point)
}

// Count returns the number of hooks registered for a point.
func (r *HookRegistry) Count(point HookPoint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[point])
}

// Run executes all hooks for the point.
// Before hooks stop at the first error and return it. After hooks all run;
// their errors are returned together.
func (r *HookRegistry) Run(ctx context.Context, point HookPoint, data *HookData) []error {
	r.mu.RLock()
	hooks := r.hooks[point]
	r.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx, point, data); err != nil {
			errs = append(errs, NewHookError(point, err))
			if isBeforeHook(point) {
				return errs
			}
		}
	}
	return errs
}

func isBeforeHook(point HookPoint) bool {
	switch point {
	case HookBeforeScan, HookBeforeRender:
		return true
	default:
		return false
	}
}

// ErrMsgHookFailed is the message of every HookError.
const ErrMsgHookFailed = "hook execution failed"

// HookError represents an error from hook execution.
type HookError struct {
	Message string
	Point   HookPoint
	Cause   error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	msg := e.Message
	if e.Point != "" {
		msg += " (hook: " + string(e.Point) + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error {
	return e.Cause
}

// NewHookError creates a hook error.
func NewHookError(point HookPoint, cause error) *HookError {
	return &HookError{Message: ErrMsgHookFailed, Point: point, Cause: cause}
}
