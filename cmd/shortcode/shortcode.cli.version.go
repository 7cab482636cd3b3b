package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/itsatony/go-shortcode"
	"gopkg.in/yaml.v3"
)

// versionConfig holds parsed version command configuration
type versionConfig struct {
	format string
}

// versionInfo holds version information, also used as JSON output
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// versionsFile mirrors the release metadata written next to the binary
type versionsFile struct {
	Project struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"project"`
	Git struct {
		Commit string `yaml:"commit"`
		Branch string `yaml:"branch"`
	} `yaml:"git"`
	Build struct {
		Time      string `yaml:"time"`
		GoVersion string `yaml:"go_version"`
	} `yaml:"build"`
}

// versionSearchDirs are checked in order for a versions file
var versionSearchDirs = []string{".", "..", filepath.Join("..", "..")}

func runVersion(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseVersionFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}

	info := getVersionInfo(versionSearchDirs)

	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(info, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
		return ExitCodeSuccess
	}

	fmt.Fprintf(stdout, VersionTextTemplate+FmtNewline,
		info.Version, info.Commit, info.Branch, info.BuildTime, info.GoVersion)
	return ExitCodeSuccess
}

func parseVersionFlags(args []string) (*versionConfig, error) {
	fs := flag.NewFlagSet(CmdNameVersion, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &versionConfig{}
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

// getVersionInfo reads the first versions file found in dirs. Without one,
// the library version is reported.
func getVersionInfo(dirs []string) *versionInfo {
	info := &versionInfo{
		Version:   shortcode.Version,
		Commit:    VersionUnknown,
		Branch:    VersionUnknown,
		BuildTime: VersionUnknown,
		GoVersion: runtime.Version(),
	}

	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, VersionsFileName))
		if err != nil {
			continue
		}

		var vf versionsFile
		if err := yaml.Unmarshal(data, &vf); err != nil {
			continue
		}

		if vf.Project.Version != "" {
			info.Version = vf.Project.Version
		}
		if vf.Git.Commit != "" {
			info.Commit = vf.Git.Commit
		}
		if vf.Git.Branch != "" {
			info.Branch = vf.Git.Branch
		}
		if vf.Build.Time != "" {
			info.BuildTime = vf.Build.Time
		}
		if vf.Build.GoVersion != "" {
			info.GoVersion = vf.Build.GoVersion
		}
		break
	}

	return info
}
