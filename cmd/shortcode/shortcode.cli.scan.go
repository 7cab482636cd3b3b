package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/itsatony/go-shortcode"
)

// scanConfig holds parsed scan command configuration
type scanConfig struct {
	settingsPath string
	inputPath    string
	format       string
}

// scanEntry represents one found shortcode in JSON output
type scanEntry struct {
	Name        string         `json:"name"`
	Params      map[string]any `json:"params,omitempty"`
	Content     string         `json:"content,omitempty"`
	SelfClosing bool           `json:"self_closing"`
	Registered  bool           `json:"registered"`
}

// scanOutput represents JSON output for scan
type scanOutput struct {
	Shortcodes []scanEntry `json:"shortcodes"`
	Count      int         `json:"count"`
	Registered int         `json:"registered"`
}

var (
	nameStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorName)).Bold(true)
	registeredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRegistered))
	unknownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorUnknown))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
)

func runScan(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseScanFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	source, err := readInput(cfg.inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	ctx := context.Background()
	engine := shortcode.MustNew()
	if cfg.settingsPath != "" {
		loaded, err := loadEngine(ctx, cfg.settingsPath, false, stderr)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadSettingsFailed, err)
			return ExitCodeInputError
		}
		defer loaded.Close()
		engine = loaded.engine
	}

	found := engine.Find(ctx, string(source))
	entries := make([]scanEntry, 0, len(found))
	registered := 0
	for _, sc := range found {
		entry := scanEntry{
			Name:        sc.Name,
			Params:      sc.Params.Map(),
			Content:     sc.Content,
			SelfClosing: sc.SelfClosing,
			Registered:  engine.Exists(sc.Name),
		}
		if entry.Registered {
			registered++
		}
		entries = append(entries, entry)
	}

	if cfg.format == OutputFormatJSON {
		return outputScanJSON(entries, registered, stdout)
	}
	return outputScanText(entries, registered, stdout)
}

func parseScanFlags(args []string) (*scanConfig, error) {
	fs := flag.NewFlagSet(CmdNameScan, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &scanConfig{}

	fs.StringVar(&cfg.settingsPath, FlagSettings, "", "")
	fs.StringVar(&cfg.settingsPath, FlagSettingsShort, "", "")
	fs.StringVar(&cfg.inputPath, FlagInput, FlagDefaultInput, "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, FlagDefaultInput, "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

func outputScanText(entries []scanEntry, registered int, stdout io.Writer) int {
	if len(entries) == 0 {
		fmt.Fprintln(stdout, mutedStyle.Render(ScanTextEmpty))
		return ExitCodeSuccess
	}

	for _, e := range entries {
		parts := []string{nameStyle.Render(e.Name)}
		if e.Registered {
			parts = append(parts, registeredStyle.Render(ScanTextRegistered))
		} else {
			parts = append(parts, unknownStyle.Render(ScanTextUnknown))
		}
		if e.SelfClosing {
			parts = append(parts, mutedStyle.Render(ScanTextSelfClose))
		} else if e.Content != "" {
			parts = append(parts, mutedStyle.Render(fmt.Sprintf(ScanTextContentFmt, len(e.Content))))
		}
		fmt.Fprintln(stdout, strings.Join(parts, " "))
	}
	fmt.Fprintf(stdout, ScanTextSummary+FmtNewline, len(entries), registered)
	return ExitCodeSuccess
}

func outputScanJSON(entries []scanEntry, registered int, stdout io.Writer) int {
	output := scanOutput{
		Shortcodes: entries,
		Count:      len(entries),
		Registered: registered,
	}

	jsonBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(stdout, string(jsonBytes))
	return ExitCodeSuccess
}
