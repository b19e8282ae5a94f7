package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the webhook server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// CommandPrefix marks chat messages as bot commands.
	CommandPrefix string `mapstructure:"COMMAND_PREFIX" default:"!"`
	// SessionTimeoutSeconds bounds a whole registration exchange, not each step.
	SessionTimeoutSeconds int `mapstructure:"SESSION_TIMEOUT_SECONDS" default:"120"`

	// Provider holds the tracking provider API configuration.
	Provider ProviderConfig `mapstructure:",squash"`

	// Registry holds the tracking registry storage configuration.
	Registry RegistryConfig `mapstructure:",squash"`

	// Gateway holds the chat gateway configuration.
	Gateway GatewayConfig `mapstructure:",squash"`
}

// ProviderConfig holds the credentials and limits for the tracking provider.
type ProviderConfig struct {
	// URL is the base URL of the provider API.
	URL string `mapstructure:"PROVIDER_URL" default:"https://api.trackingmore.com"`
	// APIKey authenticates requests against the provider.
	APIKey string `mapstructure:"PROVIDER_API_KEY" required:"true"`
	// RequestsPerMinute caps outbound provider calls.
	RequestsPerMinute int `mapstructure:"PROVIDER_REQUESTS_PER_MINUTE" default:"60"`
	// CacheTTLSeconds is how long a normalized status stays cached.
	CacheTTLSeconds int `mapstructure:"PROVIDER_CACHE_TTL_SECONDS" default:"300"`
}

// RegistryConfig holds storage details for the tracking registry.
type RegistryConfig struct {
	// Backend selects the durable store: "file" or "redis".
	Backend string `mapstructure:"REGISTRY_BACKEND" default:"file"`
	// FilePath is the JSON document location for the file backend.
	FilePath string `mapstructure:"REGISTRY_FILE_PATH" default:"tracking.json"`
	// RedisURL is the connection string for the redis backend, also used
	// for the status cache when set.
	RedisURL string `mapstructure:"REGISTRY_REDIS_URL"`
}

// GatewayConfig holds the chat gateway connection details.
type GatewayConfig struct {
	// URL is the base URL of the chat gateway used for outbound messages.
	URL string `mapstructure:"GATEWAY_URL" required:"true"`
	// Token authenticates the bot against the gateway.
	Token string `mapstructure:"GATEWAY_TOKEN" required:"true"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
