package config

import "errors"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     string `mapstructure:"port"     yaml:"port"`
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname"   yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode"  yaml:"sslmode"`
}

// Validate checks the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host must be specified")
	}
	if c.Port == "" {
		return errors.New("port must be specified")
	}
	if c.User == "" {
		return errors.New("user must be specified")
	}
	if c.DBName == "" {
		return errors.New("dbname must be specified")
	}
	return nil
}
