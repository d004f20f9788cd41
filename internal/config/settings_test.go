package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/mschirtzinger/git-copyright/internal/copyright"
	"github.com/mschirtzinger/git-copyright/internal/vcs"
)

func TestLoadPrecedence(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, ".git-copyright.yaml", "name: File Holder\njobs: 7\ncomment_sign_map:\n  txt: \"#\"\n")

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(Settings{}, repo)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Holder != "File Holder" || cfg.Jobs != 7 {
			t.Errorf("Expected file values, got holder=%q jobs=%d", cfg.Holder, cfg.Jobs)
		}
		if filepath.Base(cfg.Source) != ".git-copyright.yaml" {
			t.Errorf("Expected discovered source, got %q", cfg.Source)
		}
		if cfg.Styles["go"] != copyright.LineStyle("//") {
			t.Error("Expected defaults to be inherited")
		}
		if cfg.Styles["txt"] != copyright.LineStyle("#") {
			t.Error("Expected file mapping to be added")
		}
	})

	t.Run("settings over file", func(t *testing.T) {
		cfg, err := Load(Settings{Name: "Flag Holder", Jobs: 2, DateSource: "author"}, repo)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Holder != "Flag Holder" || cfg.Jobs != 2 || cfg.DateSource != vcs.DateAuthor {
			t.Errorf("Expected settings to win, got %+v", cfg)
		}
	})

	t.Run("explicit path skips discovery", func(t *testing.T) {
		other := writeFile(t, t.TempDir(), "other.toml", "name = \"Toml Holder\"\n")
		cfg, err := Load(Settings{ConfigPath: other}, repo)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Holder != "Toml Holder" {
			t.Errorf("Expected holder from explicit file, got %q", cfg.Holder)
		}
	})
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load(Settings{Name: "Acme"}, t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Expected no source file, got %q", cfg.Source)
	}

	if _, err := Load(Settings{}, t.TempDir()); !errors.Is(err, copyright.ErrConfiguration) {
		t.Errorf("Expected missing holder to fail, got %v", err)
	}
	if _, err := Load(Settings{Name: "Acme", Jobs: -1}, t.TempDir()); !errors.Is(err, copyright.ErrConfiguration) {
		t.Errorf("Expected negative jobs to fail, got %v", err)
	}
}

func TestFromViper(t *testing.T) {
	t.Setenv("GIT_COPYRIGHT_NAME", "Env Holder")
	t.Setenv("GIT_COPYRIGHT_IGNORE_UNCOMMITTED", "true")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyName, "", "")
	fs.Bool(KeyIgnoreUncommitted, false, "")
	fs.Int(KeyJobs, 0, "")
	fs.StringSlice(KeyExclude, nil, "")

	v := NewViper()
	if err := v.BindPFlags(fs); err != nil {
		t.Fatalf("BindPFlags failed: %v", err)
	}

	s := FromViper(v)
	if s.Name != "Env Holder" {
		t.Errorf("Expected env holder, got %q", s.Name)
	}
	if !s.IgnoreUncommitted {
		t.Error("Expected env override for ignore-uncommitted")
	}
	if s.Repo != "." || s.Ref != vcs.DefaultRef {
		t.Errorf("Expected defaults for repo and ref, got %q %q", s.Repo, s.Ref)
	}

	if err := fs.Parse([]string{"--name", "Flag Holder", "--jobs", "3", "--exclude", "a/**", "--exclude", "*.pb.go"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	s = FromViper(v)
	if s.Name != "Flag Holder" {
		t.Errorf("Expected flag to win over env, got %q", s.Name)
	}
	if s.Jobs != 3 {
		t.Errorf("Expected 3 jobs, got %d", s.Jobs)
	}
	if len(s.Exclude) != 2 {
		t.Errorf("Expected 2 excludes, got %v", s.Exclude)
	}
}

func TestCheckRef(t *testing.T) {
	for _, ref := range []string{"HEAD", "main", "v1.2.0", "abc123"} {
		if err := CheckRef(ref); err != nil {
			t.Errorf("CheckRef(%q) = %v", ref, err)
		}
	}
	for _, ref := range []string{"", "--output=/tmp/x", "-p"} {
		if err := CheckRef(ref); !errors.Is(err, copyright.ErrConfiguration) {
			t.Errorf("CheckRef(%q) expected ErrConfiguration, got %v", ref, err)
		}
	}
}
