package config

import (
	"os"
	"strings"
)

// Config is read from the environment; cmd/server loads a .env file first
// so local dev works without exporting anything.
type Config struct {
	Addr        string
	DatabaseURL string // empty disables persistence
	AdminUsers  []string
}

func Load() Config {
	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
	if raw := os.Getenv("ADMIN_USERS"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.AdminUsers = append(cfg.AdminUsers, name)
			}
		}
	}
	return cfg
}

// AdminSet merges the env-configured admins into one lookup set.
func (c Config) AdminSet() map[string]bool {
	admins := make(map[string]bool, len(c.AdminUsers))
	for _, name := range c.AdminUsers {
		admins[name] = true
	}
	return admins
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
