package shortcode

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Settings describes a template-backed shortcode setup: which tags exist,
// which template renders each of them and where templates are stored.
//
// YAML form:
//
//	default_method: parse
//	storage:
//	  driver: filesystem
//	  connection: ./templates
//	cache:
//	  ttl: 5m
//	shortcodes:
//	  youtube: video
//	templates:
//	  video: '<iframe src="https://www.youtube.com/embed/{{.id}}"></iframe>'
//
// HCL form:
//
//	default_method = "parse"
//	storage {
//	  driver     = "filesystem"
//	  connection = "./templates"
//	}
//	shortcode "youtube" {
//	  template = "video"
//	}
//	template "video" {
//	  source = "<iframe src=\"https://www.youtube.com/embed/{{.id}}\"></iframe>"
//	}
type Settings struct {
	// DefaultMethod is the method invoked on type callbacks.
	DefaultMethod string `yaml:"default_method,omitempty"`

	// Storage selects the template storage driver. An empty driver means
	// in-memory storage.
	Storage StorageSettings `yaml:"storage,omitempty"`

	// Cache wraps the storage in a CachedStorage when set.
	Cache *CacheSettings `yaml:"cache,omitempty"`

	// Shortcodes maps tag names to template names.
	Shortcodes map[string]string `yaml:"shortcodes,omitempty"`

	// Templates holds inline template sources, saved to the storage when
	// missing or changed.
	Templates map[string]string `yaml:"templates,omitempty"`
}

// StorageSettings selects a registered storage driver.
type StorageSettings struct {
	Driver     string `yaml:"driver,omitempty" hcl:"driver,optional"`
	Connection string `yaml:"connection,omitempty" hcl:"connection,optional"`
}

// CacheSettings configures CachedStorage. Durations use time.ParseDuration
// syntax ("5m", "30s").
type CacheSettings struct {
	TTL         string `yaml:"ttl,omitempty" hcl:"ttl,optional"`
	NegativeTTL string `yaml:"negative_ttl,omitempty" hcl:"negative_ttl,optional"`
	MaxEntries  int    `yaml:"max_entries,omitempty" hcl:"max_entries,optional"`
}

// hclSettingsFile is the decoding target for HCL settings.
type hclSettingsFile struct {
	DefaultMethod string               `hcl:"default_method,optional"`
	Storage       *StorageSettings     `hcl:"storage,block"`
	Cache         *CacheSettings       `hcl:"cache,block"`
	Shortcodes    []*hclShortcodeBlock `hcl:"shortcode,block"`
	Templates     []*hclTemplateBlock  `hcl:"template,block"`
}

type hclShortcodeBlock struct {
	Name     string `hcl:"name,label"`
	Template string `hcl:"template"`
}

type hclTemplateBlock struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
}

// LoadSettings reads a settings file. The format follows the extension:
// .yaml and .yml are YAML, .hcl is HCL.
func LoadSettings(path string) (*Settings, error) {
	format, err := settingsFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgSettingsRead, path, err)
	}
	return ParseSettings(data, format, path)
}

// ParseSettings decodes settings in the given format ("yaml" or "hcl").
// filename is used in error messages only.
func ParseSettings(data []byte, format, filename string) (*Settings, error) {
	var (
		s   *Settings
		err error
	)
	switch format {
	case SettingsFormatYAML:
		s, err = parseYAMLSettings(data, filename)
	case SettingsFormatHCL:
		s, err = parseHCLSettings(data, filename)
	default:
		return nil, NewConfigError(ErrMsgSettingsFormat, filename, nil)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseYAMLSettings(data []byte, filename string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, NewConfigError(ErrMsgSettingsParse, filename, err)
	}
	return &s, nil
}

func parseHCLSettings(data []byte, filename string) (*Settings, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, NewConfigError(ErrMsgSettingsParse, filename, diags)
	}

	var raw hclSettingsFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, NewConfigError(ErrMsgSettingsParse, filename, diags)
	}

	s := &Settings{
		DefaultMethod: raw.DefaultMethod,
		Cache:         raw.Cache,
	}
	if raw.Storage != nil {
		s.Storage = *raw.Storage
	}
	if len(raw.Shortcodes) > 0 {
		s.Shortcodes = make(map[string]string, len(raw.Shortcodes))
		for _, b := range raw.Shortcodes {
			s.Shortcodes[b.Name] = b.Template
		}
	}
	if len(raw.Templates) > 0 {
		s.Templates = make(map[string]string, len(raw.Templates))
		for _, b := range raw.Templates {
			s.Templates[b.Name] = b.Source
		}
	}
	return s, nil
}

func settingsFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtYAML, ExtYML:
		return SettingsFormatYAML, nil
	case ExtHCL:
		return SettingsFormatHCL, nil
	default:
		return "", NewConfigError(ErrMsgSettingsFormat, path, nil)
	}
}

// Validate checks tag names, template names and cache durations.
func (s *Settings) Validate() error {
	for name, target := range s.Shortcodes {
		if strings.TrimSpace(name) == "" {
			return NewConfigError(ErrMsgSettingsEmptyTag, "", nil)
		}
		if strings.TrimSpace(target) == "" {
			return NewConfigError(ErrMsgSettingsEmptyTarget, name, nil)
		}
	}
	if _, err := s.cacheConfig(); err != nil {
		return err
	}
	return nil
}

// TagMapping returns the shortcode to template mapping.
func (s *Settings) TagMapping() TagMapping {
	m := make(TagMapping, len(s.Shortcodes))
	for name, target := range s.Shortcodes {
		m[strings.TrimSpace(name)] = strings.TrimSpace(target)
	}
	return m
}

// Names returns the configured shortcode names, sorted.
func (s *Settings) Names() []string {
	names := make([]string, 0, len(s.Shortcodes))
	for name := range s.Shortcodes {
		names = append(names, strings.TrimSpace(name))
	}
	sort.Strings(names)
	return names
}

func (s *Settings) cacheConfig() (*CacheConfig, error) {
	if s.Cache == nil {
		return nil, nil
	}
	config := DefaultCacheConfig()
	if s.Cache.TTL != "" {
		d, err := time.ParseDuration(s.Cache.TTL)
		if err != nil {
			return nil, NewConfigError(ErrMsgSettingsParse, "", err)
		}
		config.TTL = d
	}
	if s.Cache.NegativeTTL != "" {
		d, err := time.ParseDuration(s.Cache.NegativeTTL)
		if err != nil {
			return nil, NewConfigError(ErrMsgSettingsParse, "", err)
		}
		config.NegativeCacheTTL = d
	}
	if s.Cache.MaxEntries > 0 {
		config.MaxEntries = s.Cache.MaxEntries
	}
	return &config, nil
}

// OpenStorage opens the configured storage, wraps it in a cache when
// configured and saves inline templates that are missing or changed.
func (s *Settings) OpenStorage(ctx context.Context) (TemplateStorage, error) {
	driver := s.Storage.Driver
	if driver == "" {
		driver = StorageDriverNameMemory
	}

	storage, err := OpenStorage(driver, s.Storage.Connection)
	if err != nil {
		return nil, err
	}

	cacheConfig, err := s.cacheConfig()
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	if cacheConfig != nil {
		storage = NewCachedStorage(storage, *cacheConfig)
	}

	names := make([]string, 0, len(s.Templates))
	for name := range s.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		source := s.Templates[name]
		current, err := storage.Get(ctx, name)
		if err == nil && current.Source == source {
			continue
		}
		if err != nil && !IsTemplateNotFound(err) {
			_ = storage.Close()
			return nil, err
		}
		if err := storage.Save(ctx, &StoredTemplate{Name: name, Source: source}); err != nil {
			_ = storage.Close()
			return nil, err
		}
	}
	return storage, nil
}

// Apply registers every configured shortcode in the engine's registry,
// rendering through renderer.
func (s *Settings) Apply(engine *Engine, renderer Renderer) error {
	for name, target := range s.TagMapping() {
		if err := engine.RegisterShortcode(name, TemplateCallback(renderer, TemplateID(target))); err != nil {
			return err
		}
	}
	return nil
}

// NewEngine builds an engine that renders the configured shortcodes from
// the configured storage. Further options are applied after the ones
// derived from the settings. The caller owns the returned storage.
func (s *Settings) NewEngine(ctx context.Context, opts ...Option) (*Engine, TemplateStorage, error) {
	storage, err := s.OpenStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	renderer, err := NewTemplateRenderer(storage, config.logger)
	if err != nil {
		_ = storage.Close()
		return nil, nil, err
	}

	base := []Option{
		WithTagLookup(s.TagMapping()),
		WithRenderer(renderer),
		WithDefaultMethod(s.DefaultMethod),
	}
	engine, err := New(append(base, opts...)...)
	if err != nil {
		_ = storage.Close()
		return nil, nil, err
	}

	if err := s.Apply(engine, renderer); err != nil {
		_ = storage.Close()
		return nil, nil, err
	}

	engine.logger.Debug(LogMsgSettingsLoaded, zap.Int(LogFieldTagCount, len(s.Shortcodes)))
	return engine, storage, nil
}
