// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Import struct {
		Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
		Encoding           string `mapstructure:"encoding" yaml:"encoding"`
		DateFormat         string `mapstructure:"date_format" yaml:"date_format"`
		DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
		ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	} `mapstructure:"import" yaml:"import"`

	Export struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"export" yaml:"export"`

	Rules struct {
		SeedFile string `mapstructure:"seed_file" yaml:"seed_file"`
	} `mapstructure:"rules" yaml:"rules"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.financeanalyzer")
	v.AddConfigPath(".financeanalyzer")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("FINANCE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. Database path also honors the unprefixed variable for compatibility
	// with shell wrappers that predate the FINANCE_ prefix.
	if err := v.BindEnv("database.path", "FINANCE_DATABASE_PATH", "DATABASE_PATH"); err != nil {
		fmt.Printf("Warning: failed to bind DATABASE_PATH environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Database defaults
	v.SetDefault("database.path", "finance.db")

	// Import defaults match the German bank exports this tool grew up on
	v.SetDefault("import.delimiter", ";")
	v.SetDefault("import.encoding", "utf-8")
	v.SetDefault("import.date_format", "%d.%m.%Y")
	v.SetDefault("import.decimal_separator", ",")
	v.SetDefault("import.thousands_separator", ".")

	// Export defaults
	v.SetDefault("export.delimiter", ",")

	// Rules defaults
	v.SetDefault("rules.seed_file", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate database path
	if config.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}

	// Validate delimiters
	if len(config.Import.Delimiter) != 1 {
		return fmt.Errorf("import delimiter must be a single character, got: %s", config.Import.Delimiter)
	}
	if len(config.Export.Delimiter) != 1 {
		return fmt.Errorf("export delimiter must be a single character, got: %s", config.Export.Delimiter)
	}

	// Validate separators
	if len(config.Import.DecimalSeparator) != 1 {
		return fmt.Errorf("decimal separator must be a single character, got: %s", config.Import.DecimalSeparator)
	}
	if len(config.Import.ThousandsSeparator) > 1 {
		return fmt.Errorf("thousands separator must be empty or a single character, got: %s", config.Import.ThousandsSeparator)
	}
	if config.Import.DecimalSeparator == config.Import.ThousandsSeparator {
		return fmt.Errorf("decimal and thousands separators must differ, both are: %s", config.Import.DecimalSeparator)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
