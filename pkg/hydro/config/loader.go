package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "config"

// Environment variable names honored for session settings. These predate the
// YAML file and stay supported for operators running from cron.
const (
	EnvAPIRoot      = "CDA_API_ROOT"
	EnvAPIKey       = "CDA_API_KEY"
	EnvOffice       = "CDA_OFFICE"
	EnvLookbackDays = "CDA_LOOKBACK_DAYS"
)

// Load builds the application configuration.
//
// envFilePath names a .env file to load first (missing files are only a debug
// note). configPath names an optional YAML configuration file; environment
// placeholders like ${CDA_API_KEY} inside it are expanded before parsing.
// Session environment variables override file values.
func Load(envFilePath, configPath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return nil, exception.New(exception.KindConfig, moduleName, "failed to read config file "+configPath, err)
		}
		// Expand ${VAR} placeholders so secrets can stay in the environment.
		expanded := os.ExpandEnv(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, exception.New(exception.KindConfig, moduleName, "failed to parse config file "+configPath, err)
		}
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), "HYDROCLI_"); err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to load config from environment variables", err)
	}

	applySessionEnv(cfg)
	return cfg, nil
}

// applySessionEnv applies the legacy CDA_* environment variables.
func applySessionEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIRoot); v != "" {
		cfg.Session.APIRoot = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Session.APIKey = v
	}
	if v := os.Getenv(EnvOffice); v != "" {
		cfg.Session.Office = v
	}
	if v := os.Getenv(EnvLookbackDays); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.LookbackDays = days
		} else {
			logger.Warnf("Ignoring invalid %s value '%s'.", EnvLookbackDays, v)
		}
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from
// environment variables, using the "yaml" tag to derive the variable name.
// For example Logging.Level maps to HYDROCLI_LOGGING_LEVEL.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		yamlTag = strings.SplitN(yamlTag, ",", 2)[0]
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return exception.Newf(exception.KindConfig, moduleName,
				"failed to set field '%s' from env var '%s': %v", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
