package main

// Command names
const (
	CmdNameCompile  = "compile"
	CmdNameStrip    = "strip"
	CmdNameScan     = "scan"
	CmdNameContains = "contains"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagSettings = "settings"
	FlagInput    = "input"
	FlagOutput   = "output"
	FlagName     = "name"
	FlagFormat   = "format"
	FlagVerbose  = "verbose"
	FlagQuiet    = "quiet"
)

// Flag names - short form
const (
	FlagSettingsShort = "s"
	FlagInputShort    = "i"
	FlagOutputShort   = "o"
	FlagNameShort     = "n"
	FlagFormatShort   = "F"
	FlagVerboseShort  = "v"
	FlagQuietShort    = "q"
)

// Flag default values
const (
	FlagDefaultInput  = "-" // stdin
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
	ExitCodeNotFound   = 3
	ExitCodeInputError = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand     = "unknown command"
	ErrMsgInvalidFlags       = "invalid flags"
	ErrMsgMissingSettings    = "settings file required"
	ErrMsgMissingName        = "shortcode name required"
	ErrMsgLoadSettingsFailed = "failed to load settings"
	ErrMsgReadFileFailed     = "failed to read input"
	ErrMsgWriteOutputFailed  = "failed to write output"
	ErrMsgCompileFailed      = "compilation failed"
	ErrMsgInvalidFormat      = "invalid output format"
)

// Help text templates
const (
	HelpMainUsage = `go-shortcode - Bracket shortcode compiler CLI

Usage:
    shortcode <command> [options]

Commands:
    compile     Render the shortcodes in a text
    strip       Remove all shortcode syntax from a text
    scan        List the shortcodes found in a text
    contains    Check whether a text uses a shortcode
    version     Show version information
    help        Show help for a command

Use "shortcode help <command>" for more information about a command.`

	HelpCompileUsage = `Render the shortcodes in a text

Usage:
    shortcode compile [options]

Options:
    -s, --settings <file>   Settings file (.yaml, .yml or .hcl)
    -i, --input <file>      Input file (default: stdin)
    -o, --output <file>     Output file (default: stdout)
    -v, --verbose           Log engine activity to stderr

Examples:
    shortcode compile -s shortcodes.yaml -i post.md
    cat post.md | shortcode compile -s shortcodes.hcl -o post.html`

	HelpStripUsage = `Remove all shortcode syntax from a text

Usage:
    shortcode strip [options]

Options:
    -s, --settings <file>   Settings file (.yaml, .yml or .hcl)
    -i, --input <file>      Input file (default: stdin)
    -o, --output <file>     Output file (default: stdout)

Nothing is stripped when the settings register no shortcode.

Examples:
    shortcode strip -s shortcodes.yaml -i post.md`

	HelpScanUsage = `List the shortcodes found in a text

Usage:
    shortcode scan [options]

Options:
    -s, --settings <file>   Settings file; marks registered shortcodes
    -i, --input <file>      Input file (default: stdin)
    -F, --format <format>   Output format: text, json (default: text)

Examples:
    shortcode scan -i post.md
    shortcode scan -s shortcodes.yaml -i post.md -F json`

	HelpContainsUsage = `Check whether a text uses a shortcode

Usage:
    shortcode contains [options]

Options:
    -s, --settings <file>   Settings file (.yaml, .yml or .hcl)
    -i, --input <file>      Input file (default: stdin)
    -n, --name <name>       Shortcode name
    -q, --quiet             Only set the exit code

Exit code 0 means found, 3 means not found or not registered.

Examples:
    shortcode contains -s shortcodes.yaml -i post.md -n youtube`

	HelpVersionUsage = `Show version information

Usage:
    shortcode version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    shortcode help [command]

Commands:
    compile     Show help for compile command
    strip       Show help for strip command
    scan        Show help for scan command
    contains    Show help for contains command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-shortcode version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
	VersionsFileName    = "versions.yaml"
)

// Scan output
const (
	ScanTextEmpty      = "No shortcodes found"
	ScanTextSummary    = "%d shortcode(s), %d registered"
	ScanTextRegistered = "registered"
	ScanTextUnknown    = "unknown"
	ScanTextSelfClose  = "self-closing"
	ScanTextContentFmt = "content: %d bytes"
	ContainsTextFound  = "found"
	ContainsTextAbsent = "not found"
)

// Scan styling colors
const (
	ColorName       = "#87CEEB"
	ColorRegistered = "#98FB98"
	ColorUnknown    = "#FFB86C"
	ColorMuted      = "#808080"
)

// CLI metadata
const (
	CLIName = "shortcode"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
