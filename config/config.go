package config

import (
	"github.com/namsral/flag"
)

type Config struct {
	ListenAddr       string
	DBConnUri        string
	DBMigrationsPath string
	SecretKey        string
	LogLevel         string

	MaxCardsAdd   int
	MaxStudyLimit int
}

// Load loads the configs from the given arguments
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("cardvault", flag.ContinueOnError)

	fs.StringVar(&c.ListenAddr, "listen-addr", ":8190", "address the API server listens on")
	fs.StringVar(&c.DBConnUri, "db-conn-uri", "", "the postgres database connection URI")
	fs.StringVar(&c.DBMigrationsPath, "db-migrations-path", "file://db/migrations", "the path where migrations are stored")
	fs.StringVar(&c.SecretKey, "secret-key", "", "the HMAC secret used to verify JWTs")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level")

	fs.IntVar(&c.MaxCardsAdd, "max-cards-add", 500, "maximum number of cards that can be added in one request")
	fs.IntVar(&c.MaxStudyLimit, "max-study-limit", 100, "maximum size of a study batch")

	err := fs.Parse(args)
	return err
}
