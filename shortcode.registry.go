package shortcode

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Registry maps shortcode names to callbacks and owns the handler types and
// functions those callbacks refer to. Handler instances are created lazily,
// at most once per callback, and reused afterwards.
// It is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	shortcodes    map[string]Callback
	types         map[string]Factory
	funcs         map[string]HandlerFunc
	defaultMethod string
	logger        *zap.Logger

	instMu    sync.RWMutex
	instances map[string]*instanceSlot
}

// instanceSlot holds one lazily created handler instance. The factory runs
// inside once, outside of the registry locks.
type instanceSlot struct {
	once sync.Once
	inst any
	err  error
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &Registry{
		shortcodes:    make(map[string]Callback),
		types:         make(map[string]Factory),
		funcs:         make(map[string]HandlerFunc),
		instances:     make(map[string]*instanceSlot),
		defaultMethod: DefaultMethod,
		logger:        logger,
	}
}

// SetDefaultMethod changes the method invoked on type callbacks.
// An empty name restores DefaultMethod.
func (r *Registry) SetDefaultMethod(method string) {
	method = strings.TrimSpace(method)
	if method == "" {
		method = DefaultMethod
	}
	r.mu.Lock()
	r.defaultMethod = method
	r.mu.Unlock()
}

// DefaultMethod returns the method invoked on type callbacks.
func (r *Registry) DefaultMethod() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultMethod
}

// RegisterShortcode binds a callback to one or more names.
// Several names may be given separated by ":" ("img:image:picture"); those
// segments are trimmed and empty ones are skipped. A name without ":" is
// stored as given. Re-registering a name replaces its callback.
func (r *Registry) RegisterShortcode(name string, cb Callback) error {
	names := splitNames(name)
	if len(names) == 0 {
		return NewRegistryError(ErrMsgEmptyShortcodeName, name)
	}
	if cb.IsZero() {
		return NewRegistryError(ErrMsgEmptyCallback, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range names {
		if _, exists := r.shortcodes[n]; exists {
			r.logger.Debug(LogMsgShortcodeReplaced,
				zap.String(LogFieldShortcode, n),
				zap.String(LogFieldCallback, cb.String()),
			)
		}
		r.shortcodes[n] = cb
		r.logger.Debug(LogMsgShortcodeRegistered,
			zap.String(LogFieldShortcode, n),
			zap.String(LogFieldCallback, cb.String()),
		)
	}
	return nil
}

// MustRegisterShortcode registers a callback and panics on failure.
func (r *Registry) MustRegisterShortcode(name string, cb Callback) {
	if err := r.RegisterShortcode(name, cb); err != nil {
		panic(err)
	}
}

// RegisterShortcodes registers every entry of the map, in sorted key order.
// It stops at the first invalid entry.
func (r *Registry) RegisterShortcodes(shortcodes map[string]Callback) error {
	keys := make([]string, 0, len(shortcodes))
	for k := range shortcodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := r.RegisterShortcode(k, shortcodes[k]); err != nil {
			return err
		}
	}
	return nil
}

// UnregisterShortcode removes a name. Unknown names are ignored.
func (r *Registry) UnregisterShortcode(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shortcodes[name]; !ok {
		return
	}
	delete(r.shortcodes, name)
	r.logger.Debug(LogMsgShortcodeUnregistered, zap.String(LogFieldShortcode, name))
}

// Exists checks whether a name is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.shortcodes[name]
	return ok
}

// Count returns the number of registered names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shortcodes)
}

// List returns all registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.shortcodes))
	for n := range r.shortcodes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Callback returns the callback registered for name.
func (r *Registry) Callback(name string) (Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.shortcodes[name]
	return cb, ok
}

// RegisterType makes a handler type available to type and method callbacks.
// Replacing a type drops the instances created from the previous factory.
func (r *Registry) RegisterType(typeName string, factory Factory) error {
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return NewRegistryError(ErrMsgEmptyTypeName, typeName)
	}
	if factory == nil {
		return NewRegistryError(ErrMsgNilFactory, typeName)
	}

	r.mu.Lock()
	r.types[typeName] = factory
	r.mu.Unlock()

	r.instMu.Lock()
	for key := range r.instances {
		if key == typeName || strings.HasPrefix(key, typeName+MethodSeparator) {
			delete(r.instances, key)
		}
	}
	r.instMu.Unlock()

	r.logger.Debug(LogMsgTypeRegistered, zap.String(LogFieldTypeName, typeName))
	return nil
}

// RegisterFunc makes a handler function available to function callbacks.
func (r *Registry) RegisterFunc(funcName string, fn HandlerFunc) error {
	funcName = strings.TrimSpace(funcName)
	if funcName == "" {
		return NewRegistryError(ErrMsgEmptyFuncName, funcName)
	}
	if fn == nil {
		return NewRegistryError(ErrMsgNilHandlerFunc, funcName)
	}

	r.mu.Lock()
	r.funcs[funcName] = fn
	r.mu.Unlock()

	r.logger.Debug(LogMsgFuncRegistered, zap.String(LogFieldFuncName, funcName))
	return nil
}

// ResolveCallback binds the callback registered for name to a handler.
//
// Method callbacks use a cached instance of their type. Type callbacks, and
// function callbacks whose name matches a registered type, invoke the
// default method on a cached instance. Anything else must be a registered
// function or an inline handler.
func (r *Registry) ResolveCallback(name string) (*ResolvedCallback, error) {
	cb, ok := r.Callback(name)
	if !ok {
		return nil, NewShortcodeNotFoundError(name)
	}

	switch cb.kind {
	case CallbackKindInline:
		return &ResolvedCallback{Callback: cb, Handler: cb.fn}, nil
	case CallbackKindMethod:
		return r.resolveMethod(cb, cb.typeName, cb.method)
	case CallbackKindType:
		return r.resolveMethod(cb, cb.typeName, r.DefaultMethod())
	}

	r.mu.RLock()
	_, isType := r.types[cb.name]
	fn, isFunc := r.funcs[cb.name]
	r.mu.RUnlock()

	if isType {
		return r.resolveMethod(cb, cb.name, r.DefaultMethod())
	}
	if !isFunc {
		return nil, NewFuncNotFoundError(cb.name)
	}
	return &ResolvedCallback{Callback: cb, Handler: fn}, nil
}

func (r *Registry) resolveMethod(cb Callback, typeName, method string) (*ResolvedCallback, error) {
	if method == "" {
		return nil, NewRegistryError(ErrMsgEmptyMethodName, typeName)
	}
	inst, err := r.instance(typeName, cb.String())
	if err != nil {
		return nil, err
	}
	handler, err := bindMethod(inst, typeName, method)
	if err != nil {
		return nil, err
	}
	return &ResolvedCallback{Callback: cb, Instance: inst, Handler: handler}, nil
}

// instance returns the cached handler instance for key, creating it on the
// first request. Cache hits take only the read lock; a miss creates the slot
// under the write lock and runs the factory after releasing it, so a factory
// may resolve other callbacks.
func (r *Registry) instance(typeName, key string) (any, error) {
	r.instMu.RLock()
	slot, ok := r.instances[key]
	r.instMu.RUnlock()

	if !ok {
		r.instMu.Lock()
		if slot, ok = r.instances[key]; !ok {
			slot = &instanceSlot{}
			r.instances[key] = slot
		}
		r.instMu.Unlock()
	}

	slot.once.Do(func() {
		slot.inst, slot.err = r.newInstance(typeName, key)
	})
	if slot.err != nil {
		r.instMu.Lock()
		if r.instances[key] == slot {
			delete(r.instances, key)
		}
		r.instMu.Unlock()
		return nil, slot.err
	}
	return slot.inst, nil
}

func (r *Registry) newInstance(typeName, key string) (any, error) {
	r.mu.RLock()
	factory, ok := r.types[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, NewTypeNotFoundError(typeName)
	}

	inst := factory()
	if inst == nil {
		return nil, NewRegistryError(ErrMsgNilFactoryInstance, typeName)
	}
	r.logger.Debug(LogMsgInstanceCreated,
		zap.String(LogFieldTypeName, typeName),
		zap.String(LogFieldCallback, key),
	)
	return inst, nil
}

// bindMethod looks up method on inst, first by its exact name and then with
// the first letter upper-cased, and adapts it to a HandlerFunc.
func bindMethod(inst any, typeName, method string) (HandlerFunc, error) {
	v := reflect.ValueOf(inst)
	m := v.MethodByName(method)
	if !m.IsValid() {
		m = v.MethodByName(exportedName(method))
	}
	if !m.IsValid() {
		return nil, NewMethodNotFoundError(typeName, method)
	}

	switch fn := m.Interface().(type) {
	case func(context.Context, *Shortcode) (string, error):
		return fn, nil
	case func(*Shortcode) (string, error):
		return func(_ context.Context, sc *Shortcode) (string, error) {
			return fn(sc)
		}, nil
	case func(*Shortcode) string:
		return func(_ context.Context, sc *Shortcode) (string, error) {
			return fn(sc), nil
		}, nil
	default:
		return nil, NewMethodSignatureError(typeName, method, m.Type().String())
	}
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func splitNames(name string) []string {
	if !strings.Contains(name, NameSeparator) {
		if name == "" {
			return nil
		}
		return []string{name}
	}
	parts := strings.Split(name, NameSeparator)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
