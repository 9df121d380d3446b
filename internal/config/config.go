package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the workbook name handed to the delivery mechanism.
const DefaultFileName = "Bulk_Data_Upload_Template.xlsx"

// Global configuration structure.
type Global struct {
	// Export
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	FileName       string `mapstructure:"file_name" yaml:"file_name" validate:"required,endswith=.xlsx"`
	SheetName      string `mapstructure:"sheet_name" yaml:"sheet_name" validate:"required,max=31"`
	AlertColor     string `mapstructure:"alert_color" yaml:"alert_color" validate:"len=6,hexadecimal"`
	WarningColor   string `mapstructure:"warning_color" yaml:"warning_color" validate:"len=6,hexadecimal,nefield=AlertColor"`
	HighlightScope string `mapstructure:"highlight_scope" yaml:"highlight_scope" validate:"oneof=cell row"`
	MinColumnWidth int    `mapstructure:"min_column_width" yaml:"min_column_width" validate:"min=1,max=255"`
	ColumnPadding  int    `mapstructure:"column_padding" yaml:"column_padding" validate:"min=0,max=50"`
	TotalsOffset   int    `mapstructure:"totals_offset" yaml:"totals_offset" validate:"min=1"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=json text"`

	// HTTP
	ServerAddr     string `mapstructure:"server_addr" yaml:"server_addr" validate:"required"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes" validate:"min=1"`
}

var validate = validator.New()

// maxColumnWidth is the widest column a spreadsheet accepts.
const maxColumnWidth = 255

// Validate checks field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.MinColumnWidth+c.ColumnPadding > maxColumnWidth {
		return fmt.Errorf("invalid config: min_column_width + column_padding must not exceed %d (got %d)",
			maxColumnWidth, c.MinColumnWidth+c.ColumnPadding)
	}
	return nil
}

// Dir returns ~/.bundlesheet.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bundlesheet"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bundlesheet/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", ".")
	v.SetDefault("file_name", DefaultFileName)
	v.SetDefault("sheet_name", "Sheet1")
	v.SetDefault("alert_color", "FF0000")
	v.SetDefault("warning_color", "FFFF00")
	v.SetDefault("highlight_scope", "cell")
	v.SetDefault("min_column_width", 10)
	v.SetDefault("column_padding", 2)
	v.SetDefault("totals_offset", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_bytes", 5<<20)
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BUNDLESHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.AlertColor = strings.ToUpper(strings.TrimPrefix(c.AlertColor, "#"))
	c.WarningColor = strings.ToUpper(strings.TrimPrefix(c.WarningColor, "#"))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
