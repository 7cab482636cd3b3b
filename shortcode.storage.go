package shortcode

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"
)

// StoredTemplate is a shortcode template with metadata, as kept by a
// storage backend.
type StoredTemplate struct {
	// ID identifies this version ("tmpl_" followed by a random suffix).
	ID string `json:"id" yaml:"id"`

	// Name is the render target name returned by TagLookup.
	Name string `json:"name" yaml:"name"`

	// Source is the text/template source.
	Source string `json:"source" yaml:"source"`

	// Version starts at 1 and grows with every Save.
	Version int `json:"version" yaml:"version"`

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// TemplateQuery filters List results.
type TemplateQuery struct {
	// NamePrefix filters to names starting with this prefix.
	NamePrefix string

	// NameContains filters to names containing this substring.
	NameContains string

	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// IncludeAllVersions includes all versions, not just the latest.
	IncludeAllVersions bool
}

// TemplateStorage is the interface for pluggable template backends used by
// TemplateRenderer. Implementations must be safe for concurrent use.
type TemplateStorage interface {
	// Get retrieves the latest version of a template by name.
	Get(ctx context.Context, name string) (*StoredTemplate, error)

	// GetVersion retrieves a specific version of a template.
	GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error)

	// Save stores a template as a new version. ID, Version, CreatedAt and
	// UpdatedAt are set by the storage.
	Save(ctx context.Context, tmpl *StoredTemplate) error

	// Delete removes all versions of a template.
	Delete(ctx context.Context, name string) error

	// List returns templates matching the query, ordered by name and then
	// by version descending.
	List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error)

	// Exists checks if a template with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListVersions returns all version numbers for a template, newest first.
	ListVersions(ctx context.Context, name string) ([]int, error)

	// Close releases any resources held by the storage.
	Close() error
}

// StorageDriver opens storage instances from a connection string.
type StorageDriver interface {
	Open(connectionString string) (TemplateStorage, error)
}

var (
	storageDriversMu sync.RWMutex
	storageDrivers   = make(map[string]StorageDriver)
)

// RegisterStorageDriver registers a storage driver by name.
// It panics on a nil driver or a duplicate name.
func RegisterStorageDriver(name string, driver StorageDriver) {
	storageDriversMu.Lock()
	defer storageDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}
	if _, exists := storageDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers[name] = driver
}

// OpenStorage opens a storage connection using the named driver.
//
//	storage, err := shortcode.OpenStorage("memory", "")
//	storage, err := shortcode.OpenStorage("filesystem", "./templates")
func OpenStorage(driverName, connectionString string) (TemplateStorage, error) {
	storageDriversMu.RLock()
	driver, ok := storageDrivers[driverName]
	storageDriversMu.RUnlock()

	if !ok {
		return nil, NewStorageDriverNotFoundError(driverName)
	}
	return driver.Open(connectionString)
}

// ListStorageDrivers returns the names of all registered drivers, sorted.
func ListStorageDrivers() []string {
	storageDriversMu.RLock()
	defer storageDriversMu.RUnlock()

	names := make([]string, 0, len(storageDrivers))
	for name := range storageDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Storage error message constants
const (
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgTemplateNotFound        = "template not found"
	ErrMsgVersionNotFound         = "template version not found"
	ErrMsgInvalidTemplateName     = "invalid template name"
	ErrMsgStorageIO               = "storage I/O failed"
)

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg += ": " + e.Name
		if e.Version > 0 {
			msg += " v" + strconv.Itoa(e.Version)
		}
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageDriverNotFoundError creates an error for a missing storage driver.
func NewStorageDriverNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgStorageDriverNotFound, Name: name}
}

// NewStorageTemplateNotFoundError creates an error for a missing template.
func NewStorageTemplateNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgTemplateNotFound, Name: name}
}

// NewStorageVersionNotFoundError creates an error for a missing version.
func NewStorageVersionNotFoundError(name string, version int) error {
	return &StorageError{Message: ErrMsgVersionNotFound, Name: name, Version: version}
}

// NewStorageClosedError creates an error for operations on closed storage.
func NewStorageClosedError() error {
	return &StorageError{Message: ErrMsgStorageClosed}
}

// NewStorageIOError wraps a backend failure.
func NewStorageIOError(name string, cause error) error {
	return &StorageError{Message: ErrMsgStorageIO, Name: name, Cause: cause}
}

// IsTemplateNotFound reports whether err means the template or version does
// not exist.
func IsTemplateNotFound(err error) bool {
	var se *StorageError
	if !errors.As(err, &se) {
		return false
	}
	return se.Message == ErrMsgTemplateNotFound || se.Message == ErrMsgVersionNotFound
}
