package config

import "fmt"

// Local configures the embedded on-device database.
type Local struct {
	Path        string `env:"LOCAL_DB_PATH" envDefault:"pos.db"`
	BusyTimeout int    `env:"LOCAL_DB_BUSY_TIMEOUT_MS" envDefault:"5000"`
}

// DSN returns the sqlite connection string with the pragmas the store
// depends on. WAL keeps readers unblocked while the sync engine writes.
func (l Local) DSN() string {
	return fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on",
		l.Path, l.BusyTimeout,
	)
}

// Cloud configures the remote backing database. The daemon must start even
// when this host is unreachable, so nothing here is pinged at startup.
type Cloud struct {
	Host     string `env:"CLOUD_DB_HOST" envDefault:"localhost"`
	Port     int    `env:"CLOUD_DB_PORT" envDefault:"5432"`
	User     string `env:"CLOUD_DB_USER" envDefault:"postgres"`
	Password string `env:"CLOUD_DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"CLOUD_DB_NAME" envDefault:"pos"`
	SSLMode  string `env:"CLOUD_DB_SSLMODE" envDefault:"disable"`
	TimeZone string `env:"CLOUD_DB_TIMEZONE" envDefault:"UTC"`
}

func (c Cloud) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}
