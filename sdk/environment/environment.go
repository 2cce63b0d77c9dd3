// Package environment provides utilities for loading configuration from
// environment variables, namespaced by an application prefix.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file in the working directory. A
// missing file is not an error; variables already set in the process win.
func LoadEnv() error {
	return LoadPath("")
}

// LoadPath loads variables from the .env file at p, or ./.env when p is empty.
func LoadPath(p string) error {
	var err error
	if p != "" {
		err = godotenv.Load(p)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// GetEnvOrDefault retrieves an environment variable value, returning a fallback
// value if the variable is not set.
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvKeyPrefix joins a namespace prefix and a key with an underscore.
//
//	GetEnvKeyPrefix("TASKLISTS", "PORT") // "TASKLISTS_PORT"
//	GetEnvKeyPrefix("", "PORT")          // "PORT"
func GetEnvKeyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}

// GetPrefixEnvOrDefault looks up prefix_key, returning fallback when unset.
func GetPrefixEnvOrDefault(prefix, key, fallback string) string {
	return GetEnvOrDefault(GetEnvKeyPrefix(prefix, key), fallback)
}
