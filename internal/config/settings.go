package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

// EnvPrefix is the prefix for environment overrides, e.g. GIT_COPYRIGHT_NAME.
const EnvPrefix = "GIT_COPYRIGHT"

// Settings keys shared by the flag set, the environment and viper.
const (
	KeyRepo              = "repo"
	KeyName              = "name"
	KeyConfig            = "config"
	KeyIgnoreUncommitted = "ignore-uncommitted"
	KeyCheck             = "check"
	KeyJobs              = "jobs"
	KeyRef               = "ref"
	KeyExclude           = "exclude"
	KeyDateSource        = "date-source"
	KeyJSON              = "json"
	KeyLogLevel          = "log-level"
	KeyLogFile           = "log-file"
	KeyVerbose           = "verbose"
)

// Settings are the run settings after flag and environment precedence has
// been applied. Zero values mean "not given" and defer to the config file.
type Settings struct {
	Repo              string
	Name              string
	ConfigPath        string
	IgnoreUncommitted bool
	Check             bool
	Jobs              int
	Ref               string
	Exclude           []string
	DateSource        string
	JSON              bool
	LogLevel          string
	LogFile           string
	Verbose           bool
}

// NewViper returns a viper instance reading GIT_COPYRIGHT_* variables.
// Flags are bound by the caller with BindPFlags.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyRepo, ".")
	v.SetDefault(KeyRef, vcs.DefaultRef)
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// FromViper reads Settings out of v.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		Repo:              v.GetString(KeyRepo),
		Name:              v.GetString(KeyName),
		ConfigPath:        v.GetString(KeyConfig),
		IgnoreUncommitted: v.GetBool(KeyIgnoreUncommitted),
		Check:             v.GetBool(KeyCheck),
		Jobs:              v.GetInt(KeyJobs),
		Ref:               v.GetString(KeyRef),
		Exclude:           v.GetStringSlice(KeyExclude),
		DateSource:        v.GetString(KeyDateSource),
		JSON:              v.GetBool(KeyJSON),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
		Verbose:           v.GetBool(KeyVerbose),
	}
}

// Load builds the run configuration for the repository at repoRoot.
//
// Precedence is settings > config file > embedded defaults. When
// s.ConfigPath is empty, the repository root is searched for one of
// DiscoveryNames.
func Load(s Settings, repoRoot string) (*Config, error) {
	base, err := Defaults()
	if err != nil {
		return nil, err
	}

	path := s.ConfigPath
	if path == "" && repoRoot != "" {
		path = Discover(repoRoot)
	} else if path != "" && !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	merged := base
	if path != "" {
		user, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged = Merge(base, user)
	}

	over := &File{}
	if name := strings.TrimSpace(s.Name); name != "" {
		over.Name = &s.Name
	}
	if s.Jobs != 0 {
		over.Jobs = &s.Jobs
	}
	if s.DateSource != "" {
		over.DateSource = &s.DateSource
	}
	merged = Merge(merged, over)

	cfg, err := Resolve(merged)
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// CheckRef rejects refs that git would parse as an option.
func CheckRef(ref string) error {
	if ref == "" || strings.HasPrefix(ref, "-") {
		return fmt.Errorf("%w: invalid ref %q", copyright.ErrConfiguration, ref)
	}
	return nil
}
