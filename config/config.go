// Package config loads and merges the crawler's YAML settings file
// with SECRETSCRAPER_* environment overrides, producing the frozen
// options record the core consumes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one named secret-detection regex, loaded from configuration.
type Rule struct {
	Name   string `yaml:"name"`
	Regex  string `yaml:"regex"`
	Loaded bool   `yaml:"loaded"`
}

// Settings is the full set of YAML-configurable keys.
type Settings struct {
	Verbose         bool              `yaml:"verbose"`
	Debug           bool              `yaml:"debug"`
	LogLevel        string            `yaml:"loglevel"`
	LogPath         string            `yaml:"logpath"`
	Proxy           string            `yaml:"proxy"`
	MaxDepth        int               `yaml:"max_depth"`
	MaxPageNum      int               `yaml:"max_page_num"`
	Timeout         int               `yaml:"timeout"`
	FollowRedirects bool              `yaml:"follow_redirects"`
	WorkersNum      int               `yaml:"workers_num"`
	Headers         map[string]string `yaml:"headers"`
	URLFind         []string          `yaml:"urlFind"`
	JSFind          []string          `yaml:"jsFind"`
	Rules           []Rule            `yaml:"rules"`
	DangerousPath   []string          `yaml:"dangerousPath"`
}

const envPrefix = "SECRETSCRAPER_"

// Load reads and parses the YAML settings file at path, then applies
// any SECRETSCRAPER_<KEY> environment overrides on top.
func Load(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	ApplyEnv(&s)
	return &s, nil
}

// ApplyEnv overrides s's scalar fields from SECRETSCRAPER_<KEY>
// environment variables when present, mirroring Dynaconf's
// envvar_prefix behavior. Only scalar keys are override-able this way;
// list/map keys (headers, urlFind, jsFind, rules, dangerousPath) are
// configured exclusively through the YAML file.
func ApplyEnv(s *Settings) {
	if v, ok := lookupEnv("VERBOSE"); ok {
		s.Verbose = parseBool(v, s.Verbose)
	}
	if v, ok := lookupEnv("DEBUG"); ok {
		s.Debug = parseBool(v, s.Debug)
	}
	if v, ok := lookupEnv("LOGLEVEL"); ok {
		s.LogLevel = v
	}
	if v, ok := lookupEnv("LOGPATH"); ok {
		s.LogPath = v
	}
	if v, ok := lookupEnv("PROXY"); ok {
		s.Proxy = v
	}
	if v, ok := lookupEnv("MAX_DEPTH"); ok {
		s.MaxDepth = parseInt(v, s.MaxDepth)
	}
	if v, ok := lookupEnv("MAX_PAGE_NUM"); ok {
		s.MaxPageNum = parseInt(v, s.MaxPageNum)
	}
	if v, ok := lookupEnv("TIMEOUT"); ok {
		s.Timeout = parseInt(v, s.Timeout)
	}
	if v, ok := lookupEnv("FOLLOW_REDIRECTS"); ok {
		s.FollowRedirects = parseBool(v, s.FollowRedirects)
	}
	if v, ok := lookupEnv("WORKERS_NUM"); ok {
		s.WorkersNum = parseInt(v, s.WorkersNum)
	}
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(envPrefix + key)
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

// LoadedRules returns the name→regex map of every rule with Loaded
// set, ready to hand to secrets.New/NewWithDetectedBackend.
func (s *Settings) LoadedRules() map[string]string {
	out := make(map[string]string, len(s.Rules))
	for _, r := range s.Rules {
		if r.Loaded {
			out[r.Name] = r.Regex
		}
	}
	return out
}

// WriteDefault writes the built-in default settings.yml to path unless
// a file already exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	out, err := yaml.Marshal(GenerateDefault())
	if err != nil {
		return fmt.Errorf("config: marshaling defaults: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("config: writing %q: %w", path, err)
	}
	return nil
}
