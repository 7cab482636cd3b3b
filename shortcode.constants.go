package shortcode

import "time"

// Version is the library version.
const Version = "0.4.0"

// Reserved variable names passed to the renderer alongside tag attributes
const (
	VarContent   = "content"
	VarShortcode = "shortcode"
)

// Attribute and marker names
const (
	// AttrVerbatim is the flag that renders a tag as literal text.
	AttrVerbatim = "verbatim"
	// VerbatimMarker is removed once from the matched text of a verbatim tag.
	VerbatimMarker = " verbatim"
)

// Registration syntax
const (
	// NameSeparator registers one callback under several names ("a:b:c").
	NameSeparator = ":"
	// MethodSeparator separates type and method in "Type@method" callbacks.
	MethodSeparator = "@"
)

// DefaultMethod is the method invoked on type callbacks registered without
// an explicit method. It is matched against exported Go methods, so "parse"
// binds to Parse.
const DefaultMethod = "parse"

// Callback kind names
const (
	CallbackKindNameNone   = "none"
	CallbackKindNameFunc   = "func"
	CallbackKindNameType   = "type"
	CallbackKindNameMethod = "method"
	CallbackKindNameInline = "inline"
)

// CallbackInlineLabel is the textual form of inline callbacks.
const CallbackInlineLabel = "<inline>"

// TagOpenChar is the character every shortcode starts with.
const TagOpenChar = "["

// Log message constants
const (
	LogMsgEngineCreated         = "shortcode engine created"
	LogMsgRegistryCreated       = "shortcode registry created"
	LogMsgShortcodeRegistered   = "shortcode registered"
	LogMsgShortcodeReplaced     = "shortcode registration replaced"
	LogMsgShortcodeUnregistered = "shortcode unregistered"
	LogMsgTypeRegistered        = "handler type registered"
	LogMsgFuncRegistered        = "handler function registered"
	LogMsgInstanceCreated       = "handler instance created"
	LogMsgCompileStart          = "compiling shortcodes"
	LogMsgCompileEnd            = "shortcodes compiled"
	LogMsgStripped              = "shortcodes stripped"
	LogMsgUnregisteredTag       = "unregistered shortcode left as text"
	LogMsgMissingTemplate       = "missing template for shortcode"
	LogMsgVerbatimTag           = "verbatim shortcode left as text"
	LogMsgEscapedTag            = "escaped shortcode rendered as literal"
	LogMsgRenderFailed          = "shortcode rendering failed"
	LogMsgHookFailed            = "hook returned error"
	LogMsgTemplateParsed        = "template parsed"
	LogMsgTemplateLookupFailed  = "template lookup failed"
	LogMsgSettingsLoaded        = "settings loaded"
)

// Log field names
const (
	LogFieldShortcode = "shortcode"
	LogFieldTemplate  = "template"
	LogFieldCallback  = "callback"
	LogFieldTypeName  = "type_name"
	LogFieldFuncName  = "func_name"
	LogFieldMatches   = "match_count"
	LogFieldSource    = "source_length"
	LogFieldResult    = "result_length"
	LogFieldHookPoint = "hook_point"
	LogFieldVersion   = "version"
	LogFieldPath      = "path"
	LogFieldTagCount  = "tag_count"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyShortcode = "shortcode"
	MetaKeyCallback  = "callback"
	MetaKeyTypeName  = "type_name"
	MetaKeyMethod    = "method"
	MetaKeyFuncName  = "func_name"
	MetaKeyTemplate  = "template"
	MetaKeyPath      = "path"
	MetaKeyFormat    = "format"
	MetaKeyReason    = "reason"
)

// TemplateMissingKeyOption is the text/template option applied to stored
// templates. Missing attributes render as "<no value>" unless guarded with
// the "default" function.
const TemplateMissingKeyOption = "missingkey=default"

// Settings file formats
const (
	SettingsFormatYAML = "yaml"
	SettingsFormatHCL  = "hcl"
)

// Settings file extensions
const (
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
	ExtHCL  = ".hcl"
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNamePostgres   = "postgres"
)

// Filesystem storage layout
const (
	FilesystemTemplateExt = ".tmpl"
	FilesystemDirPerm     = 0o755
	FilesystemFilePerm    = 0o644
	TemplateIDPrefix      = "tmpl_"
	TemplateIDRandomBytes = 9
)

// Cache defaults
const (
	DefaultCacheTTL         = 5 * time.Minute
	DefaultCacheMaxEntries  = 1000
	DefaultNegativeCacheTTL = 30 * time.Second
)

// Postgres defaults
const (
	PostgresDriverName             = "postgres"
	PostgresTablePrefix            = "shortcode_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)
