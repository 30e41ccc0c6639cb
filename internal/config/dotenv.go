package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment files before config parsing.
// Priority: OS env > .env.local > .env, since godotenv.Load never
// overwrites variables that are already set.
// Returns the files actually loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}
