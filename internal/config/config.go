// Package config loads the copyright configuration: holder name, comment
// style mapping, ignore patterns and run tuning.
//
// Built-in defaults are embedded in the binary. A user file in YAML, JSON
// or TOML is merged on top, and command-line settings win over both.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
	"github.com/mschirtzinger/git-copyright/internal/ignore"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

//go:embed default.yaml
var defaultYAML []byte

// DiscoveryNames are the file names looked up in the repository root when
// no configuration path is given, in order.
var DiscoveryNames = []string{".git-copyright.yaml", ".git-copyright.yml", ".git-copyright.toml"}

// File is the on-disk configuration schema. Pointer fields distinguish
// "not set" from the zero value so files can be layered.
type File struct {
	Name            *string        `yaml:"name" toml:"name"`
	CommentSignMap  map[string]any `yaml:"comment_sign_map" toml:"comment_sign_map"`
	IgnoreFiles     []string       `yaml:"ignore_files" toml:"ignore_files"`
	IgnoreDirs      []string       `yaml:"ignore_dirs" toml:"ignore_dirs"`
	Jobs            *int           `yaml:"jobs" toml:"jobs"`
	DateSource      *string        `yaml:"date_source" toml:"date_source"`
	InheritDefaults *bool          `yaml:"inherit_defaults" toml:"inherit_defaults"`
}

// Config is the resolved, validated configuration for one run. It is not
// modified after Resolve returns.
type Config struct {
	Holder      string
	Styles      map[string]copyright.CommentStyle
	IgnoreFiles []string
	IgnoreDirs  []string
	Jobs        int
	DateSource  vcs.DateSource

	// Source is the configuration file that was merged over the defaults,
	// empty when only defaults were used.
	Source string
}

// Defaults returns the embedded default configuration.
func Defaults() (*File, error) {
	f, err := parseYAML(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}
	return f, nil
}

// LoadFile reads a configuration file. The format follows the extension:
// .toml is TOML, anything else is YAML (which includes JSON).
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", copyright.ErrConfiguration, err)
	}

	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		f, err = parseTOML(data)
	default:
		f, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Discover returns the first of DiscoveryNames present in dir, or "".
func Discover(dir string) string {
	for _, name := range DiscoveryNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

func parseYAML(data []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		return nil, fmt.Errorf("%w: %v", copyright.ErrConfiguration, err)
	}
	return f, nil
}

func parseTOML(data []byte) (*File, error) {
	f := &File{}
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", copyright.ErrConfiguration, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", copyright.ErrConfiguration, strings.Join(keys, ", "))
	}
	return f, nil
}

// Merge layers over on top of base. Map entries in over replace those in
// base, ignore lists are appended and scalars replace. When over sets
// inherit_defaults to false, base is dropped entirely.
func Merge(base, over *File) *File {
	if over == nil {
		return base
	}
	if base == nil || (over.InheritDefaults != nil && !*over.InheritDefaults) {
		return over
	}

	out := &File{
		Name:            base.Name,
		CommentSignMap:  make(map[string]any, len(base.CommentSignMap)+len(over.CommentSignMap)),
		IgnoreFiles:     append(append([]string(nil), base.IgnoreFiles...), over.IgnoreFiles...),
		IgnoreDirs:      append(append([]string(nil), base.IgnoreDirs...), over.IgnoreDirs...),
		Jobs:            base.Jobs,
		DateSource:      base.DateSource,
		InheritDefaults: over.InheritDefaults,
	}
	for k, v := range base.CommentSignMap {
		out.CommentSignMap[k] = v
	}
	for k, v := range over.CommentSignMap {
		out.CommentSignMap[k] = v
	}
	if over.Name != nil {
		out.Name = over.Name
	}
	if over.Jobs != nil {
		out.Jobs = over.Jobs
	}
	if over.DateSource != nil {
		out.DateSource = over.DateSource
	}
	return out
}

// Resolve validates f and turns it into a Config. The holder must already
// be present in f.Name.
func Resolve(f *File) (*Config, error) {
	if f == nil {
		f = &File{}
	}

	styles, err := parseStyles(f.CommentSignMap)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Styles:      styles,
		IgnoreFiles: append([]string(nil), f.IgnoreFiles...),
		IgnoreDirs:  append([]string(nil), f.IgnoreDirs...),
		Jobs:        runtime.NumCPU(),
		DateSource:  vcs.DateCommitter,
	}

	if f.Jobs != nil {
		if *f.Jobs < 1 {
			return nil, fmt.Errorf("%w: jobs must be at least 1, got %d", copyright.ErrConfiguration, *f.Jobs)
		}
		cfg.Jobs = *f.Jobs
	}

	if f.DateSource != nil && *f.DateSource != "" {
		ds := vcs.DateSource(strings.ToLower(*f.DateSource))
		if !ds.Valid() {
			return nil, fmt.Errorf("%w: date_source must be %q or %q, got %q",
				copyright.ErrConfiguration, vcs.DateCommitter, vcs.DateAuthor, *f.DateSource)
		}
		cfg.DateSource = ds
	}

	// Validate patterns now so a typo fails at startup.
	if _, err := ignore.New(cfg.IgnoreFiles, cfg.IgnoreDirs); err != nil {
		return nil, fmt.Errorf("%w: %v", copyright.ErrConfiguration, err)
	}

	var name string
	if f.Name != nil {
		name = *f.Name
	}
	holder, err := ValidateHolder(name, cfg.closers())
	if err != nil {
		return nil, err
	}
	cfg.Holder = holder

	return cfg, nil
}

// Resolver returns the comment style resolver for cfg.
func (c *Config) Resolver() *copyright.Resolver {
	return copyright.NewResolver(c.Styles)
}

// Matcher returns the ignore predicate for cfg plus any extra file
// patterns.
func (c *Config) Matcher(extra ...string) (*ignore.Matcher, error) {
	files := append(append([]string(nil), c.IgnoreFiles...), extra...)
	m, err := ignore.New(files, c.IgnoreDirs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", copyright.ErrConfiguration, err)
	}
	return m, nil
}

func (c *Config) closers() []string {
	return c.Resolver().Closers()
}

// parseStyles converts the raw comment_sign_map. A value is a line prefix
// string, a two-element [open, close] list, or null/false/"" to mark the
// type unsupported.
func parseStyles(raw map[string]any) (map[string]copyright.CommentStyle, error) {
	styles := make(map[string]copyright.CommentStyle, len(raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "" || strings.ContainsAny(key, `/\`) {
			return nil, fmt.Errorf("%w: comment_sign_map key %q must be an extension or file name",
				copyright.ErrConfiguration, key)
		}
		style, err := parseStyle(raw[key])
		if err != nil {
			return nil, fmt.Errorf("%w: comment_sign_map[%q]: %v", copyright.ErrConfiguration, key, err)
		}
		styles[strings.TrimPrefix(key, ".")] = style
	}
	return styles, nil
}

func parseStyle(v any) (copyright.CommentStyle, error) {
	switch v := v.(type) {
	case nil:
		return copyright.CommentStyle{}, nil
	case bool:
		if v {
			return copyright.CommentStyle{}, errors.New("true is not a comment style")
		}
		return copyright.CommentStyle{}, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return copyright.CommentStyle{}, nil
		}
		if err := checkDelimiter(v); err != nil {
			return copyright.CommentStyle{}, err
		}
		return copyright.LineStyle(v), nil
	case []any:
		if len(v) != 2 {
			return copyright.CommentStyle{}, fmt.Errorf("block style needs [open, close], got %d elements", len(v))
		}
		open, ok1 := v[0].(string)
		closer, ok2 := v[1].(string)
		if !ok1 || !ok2 {
			return copyright.CommentStyle{}, errors.New("block delimiters must be strings")
		}
		open, closer = strings.TrimSpace(open), strings.TrimSpace(closer)
		if err := checkDelimiter(open); err != nil {
			return copyright.CommentStyle{}, err
		}
		if err := checkDelimiter(closer); err != nil {
			return copyright.CommentStyle{}, err
		}
		return copyright.BlockStyle(open, closer), nil
	default:
		return copyright.CommentStyle{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func checkDelimiter(s string) error {
	if s == "" {
		return errors.New("empty delimiter")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("delimiter %q contains whitespace", s)
		}
	}
	return nil
}

// ValidateHolder trims name and checks it can be embedded in a single
// comment line: non-empty, one line, no control characters, and no block
// comment close sequence that would end the comment early.
func ValidateHolder(name string, closers []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: holder name is required", copyright.ErrConfiguration)
	}
	for _, r := range name {
		if r == '\n' || r == '\r' {
			return "", fmt.Errorf("%w: holder name must be a single line", copyright.ErrConfiguration)
		}
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: holder name contains control character %U", copyright.ErrConfiguration, r)
		}
	}
	for _, c := range closers {
		if c != "" && strings.Contains(name, c) {
			return "", fmt.Errorf("%w: holder name contains comment terminator %q", copyright.ErrConfiguration, c)
		}
	}
	return name, nil
}
