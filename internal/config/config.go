package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/tabset/internal/tabs"
)

// Config holds the full tabset configuration.
type Config struct {
	Layout    LayoutConfig    `yaml:"layout" toml:"layout"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Log       LogConfig       `yaml:"log" toml:"log"`

	// BaseDir is the directory panel file bodies are resolved against.
	// It is set by LoadFromFile and carried by MergeConfigs along with the
	// groups it belongs to.
	BaseDir string `yaml:"-" toml:"-"`
}

// LayoutConfig describes the tab groups.
type LayoutConfig struct {
	Title   string        `yaml:"title" toml:"title"`
	Initial string        `yaml:"initial" toml:"initial"`
	Strict  *bool         `yaml:"strict,omitempty" toml:"strict,omitempty"`
	Groups  []GroupConfig `yaml:"groups" toml:"groups"`
}

// IsStrict reports whether unknown group ids should be reported as errors
// by the front-ends.
func (l LayoutConfig) IsStrict() bool {
	return l.Strict != nil && *l.Strict
}

// GroupConfig is one group: the panels it shows and the controls that select it.
// A group without explicit controls gets a single control named after it.
type GroupConfig struct {
	ID       string          `yaml:"id" toml:"id"`
	Label    string          `yaml:"label" toml:"label"`
	Key      string          `yaml:"key,omitempty" toml:"key,omitempty"`
	Panels   []PanelConfig   `yaml:"panels" toml:"panels"`
	Controls []ControlConfig `yaml:"controls,omitempty" toml:"controls,omitempty"`
}

// PanelConfig is a content panel. Body and File are mutually exclusive;
// File is read relative to the config file.
type PanelConfig struct {
	ID       string `yaml:"id" toml:"id"`
	Title    string `yaml:"title" toml:"title"`
	Kind     string `yaml:"kind,omitempty" toml:"kind,omitempty"`
	Language string `yaml:"language,omitempty" toml:"language,omitempty"`
	Body     string `yaml:"body,omitempty" toml:"body,omitempty"`
	File     string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// ControlConfig is an additional selector control for a group.
type ControlConfig struct {
	ID    string `yaml:"id" toml:"id"`
	Label string `yaml:"label" toml:"label"`
	Key   string `yaml:"key,omitempty" toml:"key,omitempty"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	Addr        string `yaml:"addr" toml:"addr"`
	ReadTimeout string `yaml:"read_timeout" toml:"read_timeout"`
	Watch       *bool  `yaml:"watch,omitempty" toml:"watch,omitempty"`
	Debounce    string `yaml:"debounce" toml:"debounce"`
}

// WatchEnabled reports whether serve should reload on config file changes.
func (s ServerConfig) WatchEnabled() bool {
	return s.Watch != nil && *s.Watch
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled        *bool             `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Endpoint       string            `yaml:"endpoint" toml:"endpoint"`
	Protocol       string            `yaml:"protocol" toml:"protocol"`
	Insecure       *bool             `yaml:"insecure,omitempty" toml:"insecure,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty" toml:"headers,omitempty"`
	ServiceName    string            `yaml:"service_name" toml:"service_name"`
	ServiceVersion string            `yaml:"service_version" toml:"service_version"`
	SampleRate     *float64          `yaml:"sample_rate,omitempty" toml:"sample_rate,omitempty"`
}

// IsEnabled reports whether export is switched on in the config.
func (t TelemetryConfig) IsEnabled() bool {
	return t.Enabled != nil && *t.Enabled
}

// IsInsecure reports whether exporters should skip TLS.
func (t TelemetryConfig) IsInsecure() bool {
	return t.Insecure != nil && *t.Insecure
}

// Rate returns the trace sample rate. Unset means sample everything.
func (t TelemetryConfig) Rate() float64 {
	if t.SampleRate == nil {
		return 1.0
	}
	return *t.SampleRate
}

// LogConfig sets the default log level. Command line verbosity flags win.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// ReservedKeys are the single-character keys the terminal front-end binds
// for navigation. Group and control keys may not use them.
const ReservedKeys = "qhl?[] "

// Validate checks that the configuration is valid and ready to use
func (c *Config) Validate() error {
	var errs []error

	if len(c.Layout.Groups) == 0 {
		errs = append(errs, errors.New("layout.groups must declare at least one group"))
	}

	groupIDs := make(map[string]bool)
	panelIDs := make(map[string]bool)
	controlIDs := make(map[string]bool)
	keys := make(map[string]string)
	bindKey := func(key, owner string) {
		if key == "" {
			return
		}
		if utf8.RuneCountInString(key) != 1 {
			errs = append(errs, fmt.Errorf("%s: key must be a single character, got %q", owner, key))
			return
		}
		if strings.Contains(ReservedKeys, key) {
			errs = append(errs, fmt.Errorf("%s: key %q is reserved for navigation", owner, key))
			return
		}
		if other, taken := keys[key]; taken {
			errs = append(errs, fmt.Errorf("%s: key %q already bound to %s", owner, key, other))
			return
		}
		keys[key] = owner
	}

	for i, g := range c.Layout.Groups {
		if g.ID == "" {
			errs = append(errs, fmt.Errorf("layout.groups[%d].id is required", i))
			continue
		}
		if groupIDs[g.ID] {
			errs = append(errs, fmt.Errorf("layout.groups: duplicate group id %q", g.ID))
		}
		groupIDs[g.ID] = true

		for j, p := range g.Panels {
			if p.ID == "" {
				errs = append(errs, fmt.Errorf("group %q: panels[%d].id is required", g.ID, j))
				continue
			}
			if panelIDs[p.ID] {
				errs = append(errs, fmt.Errorf("group %q: duplicate panel id %q", g.ID, p.ID))
			}
			panelIDs[p.ID] = true
			if !tabs.PanelKind(p.Kind).Valid() {
				errs = append(errs, fmt.Errorf("panel %q: kind must be markdown, code or text, got %q", p.ID, p.Kind))
			}
			if p.Body != "" && p.File != "" {
				errs = append(errs, fmt.Errorf("panel %q: body and file are mutually exclusive", p.ID))
			}
		}

		if len(g.Controls) == 0 {
			if controlIDs[g.ID] {
				errs = append(errs, fmt.Errorf("group %q: duplicate control id %q", g.ID, g.ID))
			}
			controlIDs[g.ID] = true
			bindKey(g.Key, "group "+g.ID)
		}
		for j, ctl := range g.Controls {
			if ctl.ID == "" {
				errs = append(errs, fmt.Errorf("group %q: controls[%d].id is required", g.ID, j))
				continue
			}
			if controlIDs[ctl.ID] {
				errs = append(errs, fmt.Errorf("group %q: duplicate control id %q", g.ID, ctl.ID))
			}
			controlIDs[ctl.ID] = true
			bindKey(ctl.Key, "control "+ctl.ID)
		}
	}

	if c.Layout.Initial != "" && !groupIDs[c.Layout.Initial] {
		errs = append(errs, fmt.Errorf("layout.initial %q does not name a group", c.Layout.Initial))
	}

	if c.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
			errs = append(errs, fmt.Errorf("server.addr: %w", err))
		}
	}
	for name, value := range map[string]string{
		"server.read_timeout": c.Server.ReadTimeout,
		"server.debounce":     c.Server.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		errs = append(errs, fmt.Errorf("telemetry.protocol must be 'grpc' or 'http', got: %s", c.Telemetry.Protocol))
	}
	if rate := c.Telemetry.Rate(); rate < 0 || rate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got: %v", rate))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got: %s", c.Log.Level))
	}

	return errors.Join(errs...)
}

// InitialGroup returns the group activated at startup: layout.initial when
// set, otherwise the first declared group.
func (c *Config) InitialGroup() string {
	if c.Layout.Initial != "" {
		return c.Layout.Initial
	}
	if len(c.Layout.Groups) > 0 {
		return c.Layout.Groups[0].ID
	}
	return ""
}

// MergeConfigs merges configs in order of increasing precedence.
// Later configs override earlier ones. Non-zero scalar fields and set
// pointer fields override;
// a tier that declares groups replaces the whole group list.
func MergeConfigs(configs ...*Config) *Config {
	result := &Config{}

	for _, cfg := range configs {
		if cfg == nil {
			continue
		}

		// Layout
		if cfg.Layout.Title != "" {
			result.Layout.Title = cfg.Layout.Title
		}
		if cfg.Layout.Initial != "" {
			result.Layout.Initial = cfg.Layout.Initial
		}
		if cfg.Layout.Strict != nil {
			result.Layout.Strict = ptr(*cfg.Layout.Strict)
		}
		if len(cfg.Layout.Groups) > 0 {
			result.Layout.Groups = cfg.Layout.Groups
			result.BaseDir = cfg.BaseDir
			// An initial group from a lower tier may not exist in the new list.
			if cfg.Layout.Initial == "" && !hasGroup(cfg.Layout.Groups, result.Layout.Initial) {
				result.Layout.Initial = ""
			}
		}

		// Server
		if cfg.Server.Addr != "" {
			result.Server.Addr = cfg.Server.Addr
		}
		if cfg.Server.ReadTimeout != "" {
			result.Server.ReadTimeout = cfg.Server.ReadTimeout
		}
		if cfg.Server.Debounce != "" {
			result.Server.Debounce = cfg.Server.Debounce
		}
		if cfg.Server.Watch != nil {
			result.Server.Watch = ptr(*cfg.Server.Watch)
		}

		// Telemetry
		t := cfg.Telemetry
		if t.Enabled != nil {
			result.Telemetry.Enabled = ptr(*t.Enabled)
		}
		if t.Endpoint != "" {
			result.Telemetry.Endpoint = t.Endpoint
		}
		if t.Protocol != "" {
			result.Telemetry.Protocol = t.Protocol
		}
		if t.Insecure != nil {
			result.Telemetry.Insecure = ptr(*t.Insecure)
		}
		if len(t.Headers) > 0 {
			result.Telemetry.Headers = t.Headers
		}
		if t.ServiceName != "" {
			result.Telemetry.ServiceName = t.ServiceName
		}
		if t.ServiceVersion != "" {
			result.Telemetry.ServiceVersion = t.ServiceVersion
		}
		if t.SampleRate != nil {
			result.Telemetry.SampleRate = ptr(*t.SampleRate)
		}

		if cfg.Log.Level != "" {
			result.Log.Level = cfg.Log.Level
		}
	}

	return result
}

func ptr[T any](v T) *T { return &v }

func hasGroup(groups []GroupConfig, id string) bool {
	for _, g := range groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// LoadFromFile reads a YAML or TOML config file, chosen by extension.
// Returns nil, nil if the file doesn't exist.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	cfg.BaseDir = filepath.Dir(path)

	return &cfg, nil
}

// LoadTiered loads system defaults, then machine config, then project config,
// and merges them in order of increasing precedence.
func LoadTiered(machinePath, projectPath string) (*Config, error) {
	system := SystemDefaults()

	machine, err := LoadFromFile(machinePath)
	if err != nil {
		return nil, fmt.Errorf("loading machine config: %w", err)
	}

	project, err := LoadFromFile(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return MergeConfigs(system, machine, project), nil
}

// DefaultPaths returns the machine and project config locations.
func DefaultPaths() (machine, project string) {
	return os.ExpandEnv("$HOME/.config/tabset/tabset.yaml"), filepath.Join(".tabset", "tabset.yaml")
}
