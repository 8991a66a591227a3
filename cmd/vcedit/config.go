package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DymOK93/GWM-Harman-VCE/internal/common"
	"github.com/DymOK93/GWM-Harman-VCE/internal/propmap"
	"github.com/DymOK93/GWM-Harman-VCE/internal/serial"
)

// defaultSettingsFile is picked up from the working directory when --config
// is not given.
const defaultSettingsFile = "vcedit.yaml"

type logConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type auditConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

type reportConfig struct {
	JSON string `yaml:"json"`
	PDF  string `yaml:"pdf"`
}

type settings struct {
	Map             string       `yaml:"map"`
	Type            string       `yaml:"type"`
	ProjectProperty string       `yaml:"projectProperty"`
	Logs            logConfig    `yaml:"logs"`
	Audit           auditConfig  `yaml:"audit"`
	Report          reportConfig `yaml:"report"`
}

func defaultSettings() settings {
	var cfg settings
	cfg.applyDefaults()
	return cfg
}

func (cfg *settings) applyDefaults() {
	if cfg.Map == "" {
		cfg.Map = "map.json"
	}
	if cfg.Type == "" {
		cfg.Type = serial.TypeBinary
	}
	if cfg.ProjectProperty == "" {
		cfg.ProjectProperty = propmap.DefaultProjectProperty
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 5
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 30
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 3
	}
	if cfg.Audit.Format == "" && cfg.Audit.Path != "" {
		cfg.Audit.Format, _ = common.AuditFormatFor(cfg.Audit.Path, "")
	}
}

// loadSettings reads a YAML settings file. Relative paths inside it are
// resolved against the file's directory.
func loadSettings(path string) (settings, error) {
	var cfg settings
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	baseDir := filepath.Dir(path)
	resolvePath := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	cfg.Map = resolvePath(cfg.Map)
	cfg.Logs.File = resolvePath(cfg.Logs.File)
	cfg.Audit.Path = resolvePath(cfg.Audit.Path)
	cfg.Report.JSON = resolvePath(cfg.Report.JSON)
	cfg.Report.PDF = resolvePath(cfg.Report.PDF)
	cfg.applyDefaults()
	return cfg, nil
}

// resolveSettings loads the explicit settings file, or the default one when
// it exists, or falls back to built-in defaults.
func resolveSettings(explicit string) (settings, string, error) {
	if explicit != "" {
		cfg, err := loadSettings(explicit)
		return cfg, explicit, err
	}
	if _, err := os.Stat(defaultSettingsFile); err == nil {
		cfg, err := loadSettings(defaultSettingsFile)
		return cfg, defaultSettingsFile, err
	}
	return defaultSettings(), "", nil
}
