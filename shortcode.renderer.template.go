package shortcode

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"go.uber.org/zap"
)

// TemplateRenderer renders shortcodes with text/template sources kept in a
// TemplateStorage. Parsed templates are cached per stored version.
//
// A template sees every attribute as a top-level field plus .content and
// .shortcode:
//
//	<figure class="{{.class}}"><img src="{{.src}}">{{.content}}</figure>
type TemplateRenderer struct {
	storage TemplateStorage
	logger  *zap.Logger
	funcs   template.FuncMap

	mu     sync.RWMutex
	parsed map[string]*parsedTemplate
}

type parsedTemplate struct {
	key  string
	tmpl *template.Template
}

// NewTemplateRenderer creates a renderer over storage.
func NewTemplateRenderer(storage TemplateStorage, logger *zap.Logger) (*TemplateRenderer, error) {
	if storage == nil {
		return nil, NewConfigError(ErrMsgNilStorage, "", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateRenderer{
		storage: storage,
		logger:  logger,
		funcs:   defaultTemplateFuncs(),
		parsed:  make(map[string]*parsedTemplate),
	}, nil
}

// Funcs adds functions available to every template and drops parsed
// templates so they pick the functions up.
func (r *TemplateRenderer) Funcs(funcs template.FuncMap) *TemplateRenderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range funcs {
		r.funcs[name] = fn
	}
	r.parsed = make(map[string]*parsedTemplate)
	return r
}

// Storage returns the underlying template storage.
func (r *TemplateRenderer) Storage() TemplateStorage {
	return r.storage
}

// TemplateExists reports whether a template named id is stored.
func (r *TemplateRenderer) TemplateExists(ctx context.Context, id TemplateID) bool {
	ok, err := r.storage.Exists(ctx, string(id))
	if err != nil {
		r.logger.Debug(LogMsgTemplateLookupFailed,
			zap.String(LogFieldTemplate, string(id)),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// RenderTemplate loads, parses (once per version) and executes id.
func (r *TemplateRenderer) RenderTemplate(ctx context.Context, id TemplateID, vars map[string]any) (string, error) {
	stored, err := r.storage.Get(ctx, string(id))
	if err != nil {
		return "", err
	}

	tmpl, err := r.parse(stored)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", NewRenderError(ErrMsgTemplateExec, shortcodeName(vars), id, err)
	}
	return sb.String(), nil
}

func (r *TemplateRenderer) parse(stored *StoredTemplate) (*template.Template, error) {
	key := stored.ID + "|" + strconv.Itoa(stored.Version) + "|" +
		strconv.FormatInt(stored.UpdatedAt.UnixNano(), 10)

	r.mu.RLock()
	cached, ok := r.parsed[stored.Name]
	r.mu.RUnlock()
	if ok && cached.key == key {
		return cached.tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.parsed[stored.Name]; ok && cached.key == key {
		return cached.tmpl, nil
	}

	tmpl, err := template.New(stored.Name).
		Option(TemplateMissingKeyOption).
		Funcs(r.funcs).
		Parse(stored.Source)
	if err != nil {
		return nil, NewRenderError(ErrMsgTemplateParse, "", TemplateID(stored.Name), err)
	}

	r.parsed[stored.Name] = &parsedTemplate{key: key, tmpl: tmpl}
	r.logger.Debug(LogMsgTemplateParsed,
		zap.String(LogFieldTemplate, stored.Name),
		zap.Int(LogFieldVersion, stored.Version),
	)
	return tmpl, nil
}

// defaultTemplateFuncs returns the helpers every template can use.
func defaultTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// default returns fallback when value is missing or empty.
		"default": func(fallback, value any) any {
			if value == nil {
				return fallback
			}
			if s, ok := value.(string); ok && s == "" {
				return fallback
			}
			return value
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
	}
}

func shortcodeName(vars map[string]any) string {
	if sc, ok := vars[VarShortcode].(*Shortcode); ok && sc != nil {
		return sc.Name
	}
	return ""
}
