package shortcode

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-memory TemplateStorage.
// It is intended for tests and for templates registered in code.
type MemoryStorage struct {
	mu        sync.RWMutex
	templates map[string][]*StoredTemplate // name -> versions, newest first
	closed    bool
}

// MemoryStorageDriver opens MemoryStorage instances.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
}

// Open creates a new MemoryStorage. The connection string is ignored.
func (d *MemoryStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		templates: make(map[string][]*StoredTemplate),
	}
}

// Get retrieves the latest version of a template by name.
func (s *MemoryStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.templates[name]
	if len(versions) == 0 {
		return nil, NewStorageTemplateNotFoundError(name)
	}
	return copyStoredTemplate(versions[0]), nil
}

// GetVersion retrieves a specific version of a template.
func (s *MemoryStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	for _, tmpl := range s.templates[name] {
		if tmpl.Version == version {
			return copyStoredTemplate(tmpl), nil
		}
	}
	return nil, NewStorageVersionNotFoundError(name, version)
}

// Save stores a template as a new version.
func (s *MemoryStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl == nil || tmpl.Name == "" {
		return &StorageError{Message: ErrMsgInvalidTemplateName}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	now := time.Now()
	versions := s.templates[tmpl.Name]

	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[0].Version + 1
	}

	stored := &StoredTemplate{
		ID:        generateTemplateID(),
		Name:      tmpl.Name,
		Source:    tmpl.Source,
		Version:   nextVersion,
		Metadata:  copyStringMap(tmpl.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}

	tmpl.ID = stored.ID
	tmpl.Version = stored.Version
	tmpl.CreatedAt = stored.CreatedAt
	tmpl.UpdatedAt = stored.UpdatedAt

	s.templates[tmpl.Name] = append([]*StoredTemplate{stored}, versions...)
	return nil
}

// Delete removes all versions of a template.
func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}
	if _, ok := s.templates[name]; !ok {
		return NewStorageTemplateNotFoundError(name)
	}
	delete(s.templates, name)
	return nil
}

// List returns templates matching the query.
func (s *MemoryStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if query == nil {
		query = &TemplateQuery{}
	}

	var results []*StoredTemplate
	for name, versions := range s.templates {
		if !matchesQuery(name, query) || len(versions) == 0 {
			continue
		}
		if query.IncludeAllVersions {
			for _, tmpl := range versions {
				results = append(results, copyStoredTemplate(tmpl))
			}
		} else {
			results = append(results, copyStoredTemplate(versions[0]))
		}
	}

	return paginate(sortTemplates(results), query), nil
}

// Exists checks if a template with the given name exists.
func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}
	return len(s.templates[name]) > 0, nil
}

// ListVersions returns all version numbers for a template.
func (s *MemoryStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.templates[name]
	result := make([]int, len(versions))
	for i, tmpl := range versions {
		result[i] = tmpl.Version
	}
	return result, nil
}

// Close marks the storage as closed and drops all templates.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.templates = nil
	return nil
}

// matchesQuery checks a template name against the query filters.
func matchesQuery(name string, query *TemplateQuery) bool {
	if query.NamePrefix != "" && !strings.HasPrefix(name, query.NamePrefix) {
		return false
	}
	if query.NameContains != "" && !strings.Contains(name, query.NameContains) {
		return false
	}
	return true
}

// sortTemplates orders by name, then version descending.
func sortTemplates(results []*StoredTemplate) []*StoredTemplate {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].Version > results[j].Version
	})
	return results
}

// paginate applies offset and limit.
func paginate(results []*StoredTemplate, query *TemplateQuery) []*StoredTemplate {
	if query.Offset > 0 {
		if query.Offset >= len(results) {
			return []*StoredTemplate{}
		}
		results = results[query.Offset:]
	}
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	if results == nil {
		return []*StoredTemplate{}
	}
	return results
}

func generateTemplateID() string {
	b := make([]byte, TemplateIDRandomBytes)
	_, _ = rand.Read(b)
	return TemplateIDPrefix + base64.RawURLEncoding.EncodeToString(b)
}

func copyStoredTemplate(tmpl *StoredTemplate) *StoredTemplate {
	if tmpl == nil {
		return nil
	}
	cp := *tmpl
	cp.Metadata = copyStringMap(tmpl.Metadata)
	return &cp
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
