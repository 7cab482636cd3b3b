package shortcode

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FilesystemStorage keeps shortcode templates in a directory.
// The current source of each template is a plain file that can be edited by
// hand; every Save also writes a YAML record to a history directory.
//
// Directory structure:
//
//	<root>/
//	  <name>.tmpl          # current source
//	  .history/
//	    <name>/
//	      v1.yaml
//	      v2.yaml
//
// A .tmpl file without history is reported as version 1.
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// Filesystem layout constants
const (
	filesystemHistoryDir    = ".history"
	filesystemVersionPrefix = "v"
	filesystemVersionSuffix = ".yaml"
)

// Filesystem storage error messages
const (
	ErrMsgInvalidStorageRoot    = "storage root directory cannot be empty"
	ErrMsgCreateStorageDir      = "failed to create storage directory"
	ErrMsgReadStorageDir        = "failed to read storage directory"
	ErrMsgReadTemplate          = "failed to read template file"
	ErrMsgWriteTemplate         = "failed to write template file"
	ErrMsgMarshalTemplate       = "failed to marshal template"
	ErrMsgUnmarshalTemplate     = "failed to unmarshal template"
	ErrMsgPathTraversalDetected = "path traversal detected in template name"
)

// FilesystemStorageDriver opens FilesystemStorage instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

// Open creates a FilesystemStorage rooted at the connection string.
func (d *FilesystemStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// NewFilesystemStorage creates a filesystem storage, creating root if needed.
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}
	if err := os.MkdirAll(root, FilesystemDirPerm); err != nil {
		return nil, &StorageError{Message: ErrMsgCreateStorageDir, Name: root, Cause: err}
	}
	return &FilesystemStorage{root: root}, nil
}

// Root returns the storage directory.
func (s *FilesystemStorage) Root() string {
	return s.root
}

// Get retrieves the current source of a template.
func (s *FilesystemStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.loadCurrent(name)
}

// GetVersion retrieves a specific version from the history.
func (s *FilesystemStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	tmpl, err := s.loadVersion(name, version)
	if err == nil || !IsTemplateNotFound(err) || version != 1 {
		return tmpl, err
	}

	// Hand-written templates have no history and count as version 1.
	versions, verr := s.historyVersions(name)
	if verr != nil || len(versions) > 0 {
		return nil, err
	}
	return s.loadCurrent(name)
}

// Save writes the template source and appends a history record.
func (s *FilesystemStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl == nil {
		return &StorageError{Message: ErrMsgInvalidTemplateName}
	}
	if err := validateTemplateNameForFilesystem(tmpl.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(tmpl.Name)
	if err != nil {
		return err
	}
	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[0] + 1
	}

	now := time.Now()
	stored := &StoredTemplate{
		ID:        generateTemplateID(),
		Name:      tmpl.Name,
		Source:    tmpl.Source,
		Version:   nextVersion,
		Metadata:  copyStringMap(tmpl.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}

	historyDir := filepath.Join(s.root, filesystemHistoryDir, tmpl.Name)
	if err := os.MkdirAll(historyDir, FilesystemDirPerm); err != nil {
		return &StorageError{Message: ErrMsgCreateStorageDir, Name: historyDir, Cause: err}
	}

	data, err := yaml.Marshal(stored)
	if err != nil {
		return &StorageError{Message: ErrMsgMarshalTemplate, Name: tmpl.Name, Cause: err}
	}
	recordPath := s.versionPath(tmpl.Name, nextVersion)
	if err := os.WriteFile(recordPath, data, FilesystemFilePerm); err != nil {
		return &StorageError{Message: ErrMsgWriteTemplate, Name: recordPath, Cause: err}
	}
	sourcePath := s.sourcePath(tmpl.Name)
	if err := os.WriteFile(sourcePath, []byte(tmpl.Source), FilesystemFilePerm); err != nil {
		return &StorageError{Message: ErrMsgWriteTemplate, Name: sourcePath, Cause: err}
	}

	tmpl.ID = stored.ID
	tmpl.Version = stored.Version
	tmpl.CreatedAt = stored.CreatedAt
	tmpl.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes the template source and its history.
func (s *FilesystemStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	sourcePath := s.sourcePath(name)
	if _, err := os.Stat(sourcePath); errors.Is(err, fs.ErrNotExist) {
		return NewStorageTemplateNotFoundError(name)
	}
	if err := os.Remove(sourcePath); err != nil {
		return NewStorageIOError(name, err)
	}
	if err := os.RemoveAll(filepath.Join(s.root, filesystemHistoryDir, name)); err != nil {
		return NewStorageIOError(name, err)
	}
	return nil
}

// List returns templates matching the query.
func (s *FilesystemStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
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

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: s.root, Cause: err}
	}

	var results []*StoredTemplate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FilesystemTemplateExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), FilesystemTemplateExt)
		if !matchesQuery(name, query) {
			continue
		}

		if !query.IncludeAllVersions {
			if tmpl, err := s.loadCurrent(name); err == nil {
				results = append(results, tmpl)
			}
			continue
		}

		history, err := s.historyVersions(name)
		if err != nil {
			continue
		}
		if len(history) == 0 {
			if tmpl, err := s.loadCurrent(name); err == nil {
				results = append(results, tmpl)
			}
			continue
		}
		for _, v := range history {
			if tmpl, err := s.loadVersion(name, v); err == nil {
				results = append(results, tmpl)
			}
		}
	}

	return paginate(sortTemplates(results), query), nil
}

// Exists checks if a template source file exists.
func (s *FilesystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}

	_, err := os.Stat(s.sourcePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, NewStorageIOError(name, err)
	}
	return true, nil
}

// ListVersions returns all version numbers for a template, newest first.
func (s *FilesystemStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.listVersionsInternal(name)
}

// Close marks the storage as closed.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *FilesystemStorage) sourcePath(name string) string {
	return filepath.Join(s.root, name+FilesystemTemplateExt)
}

func (s *FilesystemStorage) versionPath(name string, version int) string {
	return filepath.Join(s.root, filesystemHistoryDir, name,
		filesystemVersionPrefix+strconv.Itoa(version)+filesystemVersionSuffix)
}

// listVersionsInternal lists versions including a history-less source file.
// Caller must hold the lock.
func (s *FilesystemStorage) listVersionsInternal(name string) ([]int, error) {
	versions, err := s.historyVersions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) > 0 {
		return versions, nil
	}
	if _, err := os.Stat(s.sourcePath(name)); err == nil {
		return []int{1}, nil
	}
	return []int{}, nil
}

// historyVersions lists the recorded versions, newest first.
func (s *FilesystemStorage) historyVersions(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, filesystemHistoryDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []int{}, nil
		}
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: name, Cause: err}
	}

	versions := make([]int, 0, len(entries))
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() ||
			!strings.HasPrefix(filename, filesystemVersionPrefix) ||
			!strings.HasSuffix(filename, filesystemVersionSuffix) {
			continue
		}
		digits := strings.TrimSuffix(strings.TrimPrefix(filename, filesystemVersionPrefix), filesystemVersionSuffix)
		if v, err := strconv.Atoi(digits); err == nil && v > 0 {
			versions = append(versions, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// loadCurrent reads the source file and attaches the newest history record's
// metadata when one exists.
func (s *FilesystemStorage) loadCurrent(name string) (*StoredTemplate, error) {
	path := s.sourcePath(name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageTemplateNotFoundError(name)
		}
		return nil, &StorageError{Message: ErrMsgReadTemplate, Name: path, Cause: err}
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadTemplate, Name: path, Cause: err}
	}

	tmpl := &StoredTemplate{
		Name:      name,
		Version:   1,
		CreatedAt: info.ModTime(),
		UpdatedAt: info.ModTime(),
	}
	versions, err := s.historyVersions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) > 0 {
		if record, err := s.loadVersion(name, versions[0]); err == nil {
			tmpl = record
			tmpl.UpdatedAt = info.ModTime()
		}
	}
	tmpl.Source = string(source)
	return tmpl, nil
}

func (s *FilesystemStorage) loadVersion(name string, version int) (*StoredTemplate, error) {
	path := s.versionPath(name, version)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageVersionNotFoundError(name, version)
		}
		return nil, &StorageError{Message: ErrMsgReadTemplate, Name: path, Cause: err}
	}

	var tmpl StoredTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, &StorageError{Message: ErrMsgUnmarshalTemplate, Name: path, Cause: err}
	}
	return &tmpl, nil
}

// validateTemplateNameForFilesystem rejects names that would escape the root.
func validateTemplateNameForFilesystem(name string) error {
	if name == "" || strings.HasPrefix(name, ".") {
		return &StorageError{Message: ErrMsgInvalidTemplateName, Name: name}
	}
	if strings.Contains(name, "..") {
		return &StorageError{Message: ErrMsgPathTraversalDetected, Name: name}
	}
	if strings.ContainsAny(name, "/\\:*?\"<>|") {
		return &StorageError{Message: ErrMsgInvalidTemplateName, Name: name}
	}
	return nil
}
