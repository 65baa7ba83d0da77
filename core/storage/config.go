package storage

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000" yaml:"endpoint" json:"endpoint"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin" yaml:"-" json:"-"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin" yaml:"-" json:"-"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false" yaml:"use_ssl" json:"use_ssl"`
	// Bucket is the name of the bucket to store objects in.
	Bucket string `mapstructure:"bucket" default:"nubes" yaml:"bucket" json:"bucket"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:"" yaml:"region" json:"region"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" yaml:"timeout_seconds" json:"timeout_seconds"`
}
