// Package config loads countertheme settings from flags, environment and an
// optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/provide-io/countertheme/pkg/theme"
	"github.com/provide-io/countertheme/pkg/theme/archive"
	"github.com/provide-io/countertheme/pkg/theme/templates"
	"github.com/provide-io/countertheme/pkg/utils/permissions"
)

const (
	// EnvPrefix is prepended to every environment override, e.g.
	// COUNTERTHEME_THEME_WIDTH.
	EnvPrefix = "COUNTERTHEME"

	// ConfigName is the file searched for in the working directory; the
	// home directory is searched for the dotted form.
	ConfigName = "countertheme"

	// EnvSourceDateEpoch pins archive timestamps for reproducible builds.
	EnvSourceDateEpoch = "SOURCE_DATE_EPOCH"
)

// Keys shared between defaults, flag bindings and the Config struct.
const (
	KeyThemeName          = "theme.name"
	KeyThemeWidth         = "theme.width"
	KeyThemeHeight        = "theme.height"
	KeyThemePreviewWidth  = "theme.preview_width"
	KeyThemePreviewHeight = "theme.preview_height"
	KeyFooterTemplate     = "templates.footer"
	KeyInfoTemplate       = "templates.info"
	KeyResampleWorkers    = "resample.workers"
	KeyCompression        = "archive.compression"
	KeyFileMode           = "archive.file_mode"
	KeyTimeout            = "timeout"
	KeyLogLevel           = "log.level"
)

// Config is the decoded configuration.
type Config struct {
	Theme     ThemeConfig     `mapstructure:"theme"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Resample  ResampleConfig  `mapstructure:"resample"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	Log       LogConfig       `mapstructure:"log"`
}

type ThemeConfig struct {
	Name          string `mapstructure:"name"`
	Width         int    `mapstructure:"width"`
	Height        int    `mapstructure:"height"`
	PreviewWidth  int    `mapstructure:"preview_width"`
	PreviewHeight int    `mapstructure:"preview_height"`
}

// TemplatesConfig locates the footer and info templates: a file path, an
// http(s) URL, or "embedded".
type TemplatesConfig struct {
	Footer string `mapstructure:"footer"`
	Info   string `mapstructure:"info"`
}

type ResampleConfig struct {
	Workers int `mapstructure:"workers"`
}

type ArchiveConfig struct {
	Compression string `mapstructure:"compression"`
	FileMode    string `mapstructure:"file_mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with defaults and environment overrides
// registered.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyThemeName, theme.DefaultThemeName)
	v.SetDefault(KeyThemeWidth, theme.DefaultTargetWidth)
	v.SetDefault(KeyThemeHeight, theme.DefaultTargetHeight)
	v.SetDefault(KeyThemePreviewWidth, theme.DefaultPreviewWidth)
	v.SetDefault(KeyThemePreviewHeight, theme.DefaultPreviewHeight)
	v.SetDefault(KeyFooterTemplate, templates.Embedded)
	v.SetDefault(KeyInfoTemplate, templates.Embedded)
	v.SetDefault(KeyResampleWorkers, 0)
	v.SetDefault(KeyCompression, "deflate")
	v.SetDefault(KeyFileMode, permissions.FormatOctal(permissions.DefaultEntryPerms))
	v.SetDefault(KeyTimeout, 2*time.Minute)
	v.SetDefault(KeyLogLevel, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads cfgFile, or the first of ./countertheme.yaml and
// $HOME/.countertheme.yaml when cfgFile is empty. A missing file is only an
// error when it was named explicitly. It returns the file used, if any.
func ReadFile(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return "", fmt.Errorf("config file not found: %w", err)
		}
	} else {
		cfgFile = searchConfig()
		if cfgFile == "" {
			return "", nil
		}
	}

	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("reading config file %s: %w", cfgFile, err)
	}
	return v.ConfigFileUsed(), nil
}

func searchConfig() string {
	candidates := []string{ConfigName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "."+ConfigName+".yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// Decode unmarshals v into a validated Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that would fail later in the pipeline.
func (c *Config) Validate() error {
	if err := c.Request().Validate(); err != nil {
		return err
	}
	if c.Resample.Workers < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyResampleWorkers, c.Resample.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyTimeout, c.Timeout)
	}
	if _, err := c.ArchiveOptions(); err != nil {
		return err
	}
	return nil
}

// Request builds the theme request described by the configuration.
func (c *Config) Request() theme.ThemeRequest {
	return theme.ThemeRequest{
		TargetWidth:   c.Theme.Width,
		TargetHeight:  c.Theme.Height,
		PreviewWidth:  c.Theme.PreviewWidth,
		PreviewHeight: c.Theme.PreviewHeight,
		ThemeName:     c.Theme.Name,
	}
}

// ArchiveOptions converts the archive settings, applying
// SOURCE_DATE_EPOCH when set.
func (c *Config) ArchiveOptions() (archive.Options, error) {
	if _, err := archive.ParseMethod(c.Archive.Compression); err != nil {
		return archive.Options{}, fmt.Errorf("%s: %w", KeyCompression, err)
	}
	mode, err := permissions.ParseFileMode(c.Archive.FileMode, permissions.DefaultEntryPerms)
	if err != nil {
		return archive.Options{}, fmt.Errorf("%s: %w", KeyFileMode, err)
	}
	modTime, err := SourceDateEpoch()
	if err != nil {
		return archive.Options{}, err
	}
	return archive.Options{
		Compression: c.Archive.Compression,
		ModTime:     modTime,
		FileMode:    mode,
	}, nil
}

// SourceDateEpoch returns the time pinned by SOURCE_DATE_EPOCH, or the zero
// time when unset.
func SourceDateEpoch() (time.Time, error) {
	raw := strings.TrimSpace(os.Getenv(EnvSourceDateEpoch))
	if raw == "" {
		return time.Time{}, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", EnvSourceDateEpoch, raw, err)
	}
	t := time.Unix(secs, 0).UTC()
	if t.Before(archive.DefaultModTime) {
		// ZIP timestamps cannot represent anything earlier.
		t = archive.DefaultModTime
	}
	return t, nil
}
