package shortcode

import (
	"context"
	"strings"
)

// HandlerFunc renders one shortcode occurrence.
type HandlerFunc func(ctx context.Context, sc *Shortcode) (string, error)

// Factory creates a handler instance for a registered type.
// The returned value is inspected for methods by name, so it is usually a
// pointer to a struct.
type Factory func() any

// CallbackKind identifies the form of a Callback.
type CallbackKind int

const (
	// CallbackKindNone is the zero Callback.
	CallbackKindNone CallbackKind = iota
	// CallbackKindFunc names a function registered with RegisterFunc.
	CallbackKindFunc
	// CallbackKindType names a type registered with RegisterType; the
	// registry's default method is invoked on it.
	CallbackKindType
	// CallbackKindMethod names a type and a method ("Type@method").
	CallbackKindMethod
	// CallbackKindInline carries a HandlerFunc directly.
	CallbackKindInline
)

// String returns the kind name.
func (k CallbackKind) String() string {
	switch k {
	case CallbackKindFunc:
		return CallbackKindNameFunc
	case CallbackKindType:
		return CallbackKindNameType
	case CallbackKindMethod:
		return CallbackKindNameMethod
	case CallbackKindInline:
		return CallbackKindNameInline
	default:
		return CallbackKindNameNone
	}
}

// Callback tells the registry how to obtain the handler for a shortcode.
// Build one with FuncCallback, TypeCallback, MethodCallback, InlineCallback
// or ParseCallback.
type Callback struct {
	kind     CallbackKind
	name     string
	typeName string
	method   string
	fn       HandlerFunc
}

// FuncCallback references a function registered with RegisterFunc.
// When no function of that name exists but a type does, the type is used.
func FuncCallback(name string) Callback {
	return Callback{kind: CallbackKindFunc, name: strings.TrimSpace(name)}
}

// TypeCallback references a type registered with RegisterType.
func TypeCallback(typeName string) Callback {
	return Callback{kind: CallbackKindType, typeName: strings.TrimSpace(typeName)}
}

// MethodCallback references a method on a type registered with RegisterType.
func MethodCallback(typeName, method string) Callback {
	return Callback{
		kind:     CallbackKindMethod,
		typeName: strings.TrimSpace(typeName),
		method:   strings.TrimSpace(method),
	}
}

// InlineCallback wraps a handler function.
func InlineCallback(fn HandlerFunc) Callback {
	return Callback{kind: CallbackKindInline, fn: fn}
}

// ParseCallback converts the textual callback syntax used in settings files.
// "Type@method" yields a method callback, anything else a function callback.
func ParseCallback(s string) Callback {
	s = strings.TrimSpace(s)
	if typeName, method, ok := strings.Cut(s, MethodSeparator); ok {
		return MethodCallback(typeName, method)
	}
	return FuncCallback(s)
}

// Kind returns the callback form.
func (c Callback) Kind() CallbackKind {
	return c.kind
}

// TypeName returns the referenced type for type and method callbacks.
func (c Callback) TypeName() string {
	return c.typeName
}

// Method returns the method name of a method callback.
func (c Callback) Method() string {
	return c.method
}

// IsZero reports whether the callback is unset or incomplete.
func (c Callback) IsZero() bool {
	switch c.kind {
	case CallbackKindFunc:
		return c.name == ""
	case CallbackKindType:
		return c.typeName == ""
	case CallbackKindMethod:
		return c.typeName == "" || c.method == ""
	case CallbackKindInline:
		return c.fn == nil
	default:
		return true
	}
}

// String returns the textual form. It doubles as the instance cache key.
func (c Callback) String() string {
	switch c.kind {
	case CallbackKindFunc:
		return c.name
	case CallbackKindType:
		return c.typeName
	case CallbackKindMethod:
		return c.typeName + MethodSeparator + c.method
	case CallbackKindInline:
		return CallbackInlineLabel
	default:
		return ""
	}
}

// ResolvedCallback is a callback bound to a callable handler.
type ResolvedCallback struct {
	// Callback is the registered callback.
	Callback Callback
	// Instance is the handler instance for type and method callbacks.
	Instance any
	// Handler is the bound handler.
	Handler HandlerFunc
}

// Invoke runs the handler.
func (rc *ResolvedCallback) Invoke(ctx context.Context, sc *Shortcode) (string, error) {
	return rc.Handler(ctx, sc)
}
