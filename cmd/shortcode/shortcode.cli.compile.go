package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

// transformConfig holds parsed compile and strip command configuration
type transformConfig struct {
	settingsPath string
	inputPath    string
	outputPath   string
	verbose      bool
}

func runCompile(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runTransform(CmdNameCompile, args, stdin, stdout, stderr)
}

func runStrip(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runTransform(CmdNameStrip, args, stdin, stdout, stderr)
}

// runTransform reads the input, compiles or strips it and writes the result.
func runTransform(cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseTransformFlags(cmd, args)
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
	loaded, err := loadEngine(ctx, cfg.settingsPath, cfg.verbose, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadSettingsFailed, err)
		return ExitCodeInputError
	}
	defer loaded.Close()

	var result string
	if cmd == CmdNameStrip {
		result = loaded.engine.Strip(ctx, string(source))
	} else {
		result, err = loaded.engine.Compile(ctx, string(source))
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgCompileFailed, err)
			return ExitCodeError
		}
	}

	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseTransformFlags(cmd string, args []string) (*transformConfig, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &transformConfig{}

	fs.StringVar(&cfg.settingsPath, FlagSettings, "", "")
	fs.StringVar(&cfg.settingsPath, FlagSettingsShort, "", "")
	fs.StringVar(&cfg.inputPath, FlagInput, FlagDefaultInput, "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, FlagDefaultInput, "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.settingsPath == "" {
		return nil, errors.New(ErrMsgMissingSettings)
	}

	return cfg, nil
}
