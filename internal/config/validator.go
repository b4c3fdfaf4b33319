// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals and defaults the merged Koanf tree, ensuring the binary never
// runs with partial, malformed, or missing configuration.  Beyond the
// built-in rules (`required`, `hostname_port`, `url`, `oneof`) a custom
// cross-field check guards the KV section: the selected backend must come
// with its own connection settings.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	switch c.KV.Backend {
	case "redis":
		if c.KV.RedisAddr == "" {
			return fmt.Errorf("config: kv.backend is redis but kv.redis_addr is empty")
		}
	case "mysql":
		if c.KV.MySQLDSN == "" {
			return fmt.Errorf("config: kv.backend is mysql but kv.mysql_dsn is empty")
		}
	}
	return nil
}
