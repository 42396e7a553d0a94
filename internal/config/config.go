package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/jrschumacher/fxa-oauth/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. FXA_USER.
const EnvPrefix = "FXA"

// Config holds CLI configuration loaded from flags, environment variables or config file.
type Config struct {
	Env      string `mapstructure:"env" default:"stable" validate:"required,oneof=prod stage stable latest"`
	User     string `mapstructure:"user"`
	Password string `secret:"true" mapstructure:"password"`

	// Service endpoints; empty values come from the Env preset
	OAuthURL string `mapstructure:"url" validate:"omitempty,url"`
	AuthURL  string `mapstructure:"auth_url" validate:"omitempty,url"`

	// CLIClientID is the client registered in every environment for this tool
	CLIClientID string        `mapstructure:"client_id" default:"66041b7ec3991ec0" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout" default:"30s" validate:"gt=0"`
	KeySize     int           `mapstructure:"key_size" default:"128" validate:"oneof=128 256"`

	// Output
	Output   string `mapstructure:"output" default:"table" validate:"oneof=table json"`
	DebugLog string `mapstructure:"debug_log" default:"fxa-debug.log"`
	LogLevel string `mapstructure:"log_level" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
}

// flagKeys maps CLI flag names to config keys where they differ.
var flagKeys = map[string]string{
	"fxa": "auth_url",
}

// Load builds the configuration. Precedence, highest first: flags that were
// set, environment, config file, struct defaults.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := Config{}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to set struct defaults: %w", err)
	}

	// Bind env vars and defaults for each field
	typeOfCfg := reflect.TypeOf(cfg)
	valueOfCfg := reflect.ValueOf(cfg)
	for i := 0; i < typeOfCfg.NumField(); i++ {
		field := typeOfCfg.Field(i)
		key := field.Tag.Get("mapstructure")
		if key == "" {
			key = toSnakeCase(field.Name)
		}
		_ = v.BindEnv(key)
		v.SetDefault(key, valueOfCfg.Field(i).Interface())
	}

	verbose, quiet := false, false
	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
		if path, _ := flags.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
		verbose, _ = flags.GetBool("verbose")
		quiet, _ = flags.GetBool("quiet")
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("No config file found, using flags and environment variables")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	switch {
	case verbose:
		cfg.LogLevel = "DEBUG"
	case quiet:
		cfg.LogLevel = "WARN"
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	cfg.applyPreset()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "verbose", "quiet", "help", "version":
			return
		}
		key := f.Name
		if k, ok := flagKeys[key]; ok {
			key = k
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

// applyPreset fills endpoints that were not set explicitly.
func (c *Config) applyPreset() {
	p, ok := Presets[c.Env]
	if !ok {
		return
	}
	if c.OAuthURL == "" {
		c.OAuthURL = p.OAuthURL
	}
	if c.AuthURL == "" {
		c.AuthURL = p.AuthURL
	}
}

// Validate checks the config against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	return validate.Struct(cfg)
}

// String returns a string representation of the config with secret fields redacted.
func (c *Config) String() string {
	v := reflect.ValueOf(*c)
	t := reflect.TypeOf(*c)
	var sb strings.Builder
	sb.WriteString("Config{")
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Name
		value := v.Field(i).Interface()
		if field.Tag.Get("secret") == "true" {
			value = "***REDACTED***"
		}
		sb.WriteString(name + ": " + toString(value))
		if i < t.NumField()-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// toString converts interface{} to string for String
func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toSnakeCase converts CamelCase to snake_case
func toSnakeCase(str string) string {
	runes := []rune(str)
	var out []rune
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				out = append(out, '_')
			}
		}
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
