package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"nubes-server/core/database"
	"nubes-server/core/logger"
	"nubes-server/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Service failure policies.
const (
	PolicyFailFast = "fail-fast"
	PolicySkip     = "skip"
)

// Config holds the configuration document of the process unit.
// Keys follow the hyphenated naming of the configuration file.
type Config struct {
	// Host is the interface the HTTP listener binds to.
	Host string `mapstructure:"host" default:"localhost" validate:"required" yaml:"host" json:"host"`
	// Port is the TCP port the HTTP listener binds to.
	Port int `mapstructure:"port" default:"9000" validate:"gte=1,lte=65535" yaml:"port" json:"port"`
	// Services is an ordered list of [name, classReference] pairs.
	Services [][]string `mapstructure:"services" validate:"dive,len=2,dive,required" yaml:"services" json:"services"`
	// Templates is the set of template extension tags to enable.
	Templates []string `mapstructure:"templates" yaml:"templates" json:"templates"`

	// SrcPackage is the base package every derived package defaults from.
	SrcPackage string `mapstructure:"src-package" default:"src.package" validate:"required" yaml:"src-package" json:"src-package"`
	// VerticlePackage is where background workers are discovered.
	VerticlePackage string `mapstructure:"verticle-package" validate:"required" yaml:"verticle-package" json:"verticle-package"`
	// DomainPackage is never derived.
	DomainPackage string `mapstructure:"domain-package" yaml:"domain-package,omitempty" json:"domain-package,omitempty"`
	// ControllerPackages are the packages controllers are mounted from.
	ControllerPackages []string `mapstructure:"controller-packages" validate:"required,min=1,dive,required" yaml:"controller-packages" json:"controller-packages"`
	// FixturePackages are the packages fixtures are run from.
	FixturePackages []string `mapstructure:"fixture-packages" validate:"dive,required" yaml:"fixture-packages" json:"fixture-packages"`

	// ViewsDir is the directory template engines load their files from.
	ViewsDir string `mapstructure:"views-dir" default:"web/views" validate:"required" yaml:"views-dir" json:"views-dir"`
	// BootstrapTimeout bounds how long the router may take to be produced.
	BootstrapTimeout time.Duration `mapstructure:"bootstrap-timeout" default:"30s" validate:"gt=0" yaml:"bootstrap-timeout" json:"bootstrap-timeout"`
	// StopTimeout bounds the whole stop sequence.
	StopTimeout time.Duration `mapstructure:"stop-timeout" default:"10s" validate:"gt=0" yaml:"stop-timeout" json:"stop-timeout"`
	// ServiceFailurePolicy decides whether a service that cannot be created aborts the boot.
	ServiceFailurePolicy string `mapstructure:"service-failure-policy" default:"fail-fast" validate:"oneof=fail-fast skip" yaml:"service-failure-policy" json:"service-failure-policy"`

	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log" yaml:"log" json:"log"`
	// Storage holds configuration for the object storage service.
	Storage storage.Config `mapstructure:"storage" yaml:"storage" json:"storage"`
	// Database holds configuration for the database service.
	Database database.Config `mapstructure:"database" yaml:"database" json:"database"`
}

// ServiceDescriptor is one entry of the services list.
type ServiceDescriptor struct {
	Name      string
	Reference string
}

// ServiceDescriptors returns the services list as descriptors, in order.
// Entries that are not pairs are reported as missing configuration.
func (c Config) ServiceDescriptors() ([]ServiceDescriptor, error) {
	out := make([]ServiceDescriptor, 0, len(c.Services))
	for i, pair := range c.Services {
		if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
			return nil, fmt.Errorf("%w: services[%d] must be a [name, reference] pair", ErrMissingConfiguration, i)
		}
		out = append(out, ServiceDescriptor{Name: pair[0], Reference: pair[1]})
	}
	return out, nil
}

// Addr returns the host:port pair the listener binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads configuration from a conf.json/conf.yaml document in path,
// environment variables and a .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v, absent := newViper()
	v.SetConfigName("conf")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	bindEnv(v, absent)
	return decode(v)
}

// LoadFile loads configuration from an explicit document. Environment
// variables still override document values.
func LoadFile(file string) (*Config, error) {
	v, absent := newViper()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", file, err)
	}

	bindEnv(v, absent)
	return decode(v)
}

// FromMap decodes an in-memory configuration document. Environment variables
// are not consulted.
func FromMap(doc map[string]any) (*Config, error) {
	v, _ := newViper()
	if err := v.MergeConfigMap(doc); err != nil {
		return nil, fmt.Errorf("failed to merge configuration: %w", err)
	}
	return decode(v)
}

// newViper returns a viper instance with struct-tag defaults applied, and the
// keys that have no default.
func newViper() (*viper.Viper, []string) {
	v := viper.New()

	// Recursively parse struct tags to set default values
	absent := bindValues(v, Config{}, "")
	return v, absent
}

func bindEnv(v *viper.Viper, absent []string) {
	// Map environment variables to nested keys (e.g. LOG_LEVEL -> log.level, SRC_PACKAGE -> src-package)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Keys without a default are unknown to AutomaticEnv until bound.
	for _, key := range absent {
		_ = v.BindEnv(key)
	}
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags. Keys without a default tag are
// left unset so derivation can tell them apart from explicit values; they are
// returned to the caller.
func bindValues(v *viper.Viper, iface any, prefix string) []string {
	var absent []string
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			absent = append(absent, bindValues(v, reflect.New(field.Type).Elem().Interface(), key)...)
			continue
		}

		defaultValue, ok := field.Tag.Lookup("default")
		if !ok {
			absent = append(absent, key)
			continue
		}
		v.SetDefault(key, defaultValue)
	}
	return absent
}
