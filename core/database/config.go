package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql" yaml:"driver" json:"driver"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost" yaml:"host" json:"host"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306" yaml:"port" json:"port"`
	// User is the database user.
	User string `mapstructure:"user" default:"root" yaml:"user" json:"user"`
	// Password is the database password.
	Password string `mapstructure:"password" default:"" yaml:"-" json:"-"`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" default:"nubes" yaml:"name" json:"name"`
	// TimeoutSeconds is the connection and I/O timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" yaml:"timeout_seconds" json:"timeout_seconds"`
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)
