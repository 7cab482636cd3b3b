package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

// containsConfig holds parsed contains command configuration
type containsConfig struct {
	settingsPath string
	inputPath    string
	name         string
	quiet        bool
}

func runContains(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseContainsFlags(args)
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
	loaded, err := loadEngine(ctx, cfg.settingsPath, false, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadSettingsFailed, err)
		return ExitCodeInputError
	}
	defer loaded.Close()

	if loaded.engine.Contains(ctx, string(source), cfg.name) {
		if !cfg.quiet {
			fmt.Fprintln(stdout, ContainsTextFound)
		}
		return ExitCodeSuccess
	}

	if !cfg.quiet {
		fmt.Fprintln(stdout, ContainsTextAbsent)
	}
	return ExitCodeNotFound
}

func parseContainsFlags(args []string) (*containsConfig, error) {
	fs := flag.NewFlagSet(CmdNameContains, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &containsConfig{}

	fs.StringVar(&cfg.settingsPath, FlagSettings, "", "")
	fs.StringVar(&cfg.settingsPath, FlagSettingsShort, "", "")
	fs.StringVar(&cfg.inputPath, FlagInput, FlagDefaultInput, "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, FlagDefaultInput, "")
	fs.StringVar(&cfg.name, FlagName, "", "")
	fs.StringVar(&cfg.name, FlagNameShort, "", "")
	fs.BoolVar(&cfg.quiet, FlagQuiet, false, "")
	fs.BoolVar(&cfg.quiet, FlagQuietShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.settingsPath == "" {
		return nil, errors.New(ErrMsgMissingSettings)
	}
	if cfg.name == "" {
		return nil, errors.New(ErrMsgMissingName)
	}

	return cfg, nil
}
