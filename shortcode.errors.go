package shortcode

import (
	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Registry errors
	ErrMsgEmptyShortcodeName  = "shortcode name cannot be empty"
	ErrMsgEmptyCallback       = "shortcode callback cannot be empty"
	ErrMsgShortcodeNotFound   = "no callback registered for shortcode"
	ErrMsgEmptyTypeName       = "handler type name cannot be empty"
	ErrMsgNilFactory          = "handler type factory cannot be nil"
	ErrMsgNilFactoryInstance  = "handler type factory returned nil"
	ErrMsgEmptyFuncName       = "handler function name cannot be empty"
	ErrMsgNilHandlerFunc      = "handler function cannot be nil"
	ErrMsgTypeNotFound        = "handler type not registered"
	ErrMsgFuncNotFound        = "handler function not registered"
	ErrMsgMethodNotFound      = "handler method not found"
	ErrMsgMethodSignature     = "handler method has unsupported signature"
	ErrMsgEmptyMethodName     = "handler method name cannot be empty"
	ErrMsgMissingShortcodeVar = "render variables carry no shortcode"

	// Render errors
	ErrMsgRenderFailed  = "shortcode rendering failed"
	ErrMsgTemplateParse = "template parsing failed"
	ErrMsgTemplateExec  = "template execution failed"
	ErrMsgNilStorage    = "template storage cannot be nil"

	// Config errors
	ErrMsgSettingsRead        = "failed to read settings file"
	ErrMsgSettingsParse       = "failed to parse settings"
	ErrMsgSettingsFormat      = "unsupported settings format"
	ErrMsgSettingsEmptyTag    = "settings contain an empty shortcode name"
	ErrMsgSettingsEmptyTarget = "settings contain an empty template for shortcode"
)

// Error code constants for categorization
const (
	ErrCodeRegistry = "SHORTCODE_REGISTRY"
	ErrCodeRender   = "SHORTCODE_RENDER"
	ErrCodeConfig   = "SHORTCODE_CONFIG"
)

// NewRegistryError creates a registry validation error for the named shortcode
func NewRegistryError(msg string, name string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, msg).
		WithMetadata(MetaKeyShortcode, name)
}

// NewShortcodeNotFoundError creates an error for a shortcode without a callback
func NewShortcodeNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyShortcode, ErrMsgShortcodeNotFound).
		WithMetadata(MetaKeyShortcode, name)
}

// NewTypeNotFoundError creates an error for an unknown handler type
func NewTypeNotFoundError(typeName string) error {
	return cuserr.NewNotFoundError(MetaKeyTypeName, ErrMsgTypeNotFound).
		WithMetadata(MetaKeyTypeName, typeName)
}

// NewFuncNotFoundError creates an error for an unknown handler function
func NewFuncNotFoundError(funcName string) error {
	return cuserr.NewNotFoundError(MetaKeyFuncName, ErrMsgFuncNotFound).
		WithMetadata(MetaKeyFuncName, funcName)
}

// NewMethodNotFoundError creates an error for a method missing on a handler instance
func NewMethodNotFoundError(typeName, method string) error {
	return cuserr.NewNotFoundError(MetaKeyMethod, ErrMsgMethodNotFound).
		WithMetadata(MetaKeyTypeName, typeName).
		WithMetadata(MetaKeyMethod, method)
}

// NewMethodSignatureError creates an error for a handler method that cannot be bound
func NewMethodSignatureError(typeName, method, signature string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgMethodSignature).
		WithMetadata(MetaKeyTypeName, typeName).
		WithMetadata(MetaKeyMethod, method).
		WithMetadata(MetaKeyReason, signature)
}

// NewRenderError wraps a rendering backend failure.
// The cause stays reachable through errors.Is and errors.As.
func NewRenderError(msg string, shortcodeName string, template TemplateID, cause error) error {
	if cause == nil {
		return cuserr.NewValidationError(ErrCodeRender, msg).
			WithMetadata(MetaKeyShortcode, shortcodeName).
			WithMetadata(MetaKeyTemplate, string(template))
	}
	return cuserr.WrapStdError(cause, ErrCodeRender, msg).
		WithMetadata(MetaKeyShortcode, shortcodeName).
		WithMetadata(MetaKeyTemplate, string(template))
}

// NewConfigError creates a settings error with the offending path
func NewConfigError(msg string, path string, cause error) error {
	if cause == nil {
		return cuserr.NewValidationError(ErrCodeConfig, msg).
			WithMetadata(MetaKeyPath, path)
	}
	return cuserr.WrapStdError(cause, ErrCodeConfig, msg).
		WithMetadata(MetaKeyPath, path)
}
